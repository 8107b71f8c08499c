package head

// Rarity is an item rarity tier. The zero value means "no rarity".
type Rarity string

const (
	RarityNone     Rarity = ""
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityEpic     Rarity = "epic"
)

// rarityColors is the default name color for each tier when no explicit
// color is given.
var rarityColors = map[Rarity]string{
	RarityCommon:   "white",
	RarityUncommon: "yellow",
	RarityRare:     "aqua",
	RarityEpic:     "magenta",
}

// ParseRarity validates a tier name. The empty string parses to RarityNone.
func ParseRarity(s string) (Rarity, error) {
	r := Rarity(s)
	if err := r.Validate(); err != nil {
		return RarityNone, err
	}
	return r, nil
}

// Validate reports ErrInvalidRarity for anything but the four known tiers
// and RarityNone.
func (r Rarity) Validate() error {
	if r == RarityNone {
		return nil
	}
	if _, ok := rarityColors[r]; !ok {
		return Errorf("validate rarity", string(r), ErrInvalidRarity, "unknown tier %q", string(r))
	}
	return nil
}

// Color returns the default name color for the tier.
func (r Rarity) Color() (string, error) {
	if r == RarityNone {
		return "", nil
	}
	c, ok := rarityColors[r]
	if !ok {
		return "", Errorf("resolve rarity color", string(r), ErrInvalidRarity, "unknown tier %q", string(r))
	}
	return c, nil
}
