package dialect

import (
	"fmt"
	"strings"

	"head-hunter/internal/head"
	"head-hunter/internal/snbt"
)

const (
	modernGiveMarker = "player_head["
	legacyGiveMarker = "player_head{"
)

// DecodeGiveCommand reads the skin source out of a /give command typed by a
// user and merges it into base, which supplies the name, style and metadata.
// A texture takes precedence over a player name.
func DecodeGiveCommand(command string, base head.Spec) (head.Spec, error) {
	const op = "decode give command"

	var (
		player, texture string
		err             error
	)
	switch {
	case strings.Contains(command, modernGiveMarker):
		player, texture, err = modernGiveSkin(command)
	case strings.Contains(command, legacyGiveMarker):
		player, texture, err = legacyGiveSkin(command)
	default:
		return head.Spec{}, head.Errorf(op, command, head.ErrMalformedDialectText,
			"expected %q or %q", modernGiveMarker, legacyGiveMarker)
	}
	if err != nil {
		return head.Spec{}, failed(op, command, err)
	}

	s := base
	if texture != "" {
		s.Texture = texture
	} else {
		s.PlayerName = player
	}
	if err := s.Validate(); err != nil {
		return head.Spec{}, failed(op, command, err)
	}
	return s, nil
}

func modernGiveSkin(command string) (player, texture string, err error) {
	start := strings.Index(command, modernGiveMarker) + len(modernGiveMarker) - 1
	list, _, err := snbt.ParseComponentsAt(command, start)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", head.ErrMalformedDialectText, err)
	}
	for _, c := range list {
		if strings.TrimPrefix(c.Key, "minecraft:") == "profile" {
			return decodeProfile(c.Value)
		}
	}
	return "", "", head.Errorf("read give components", command, head.ErrMalformedDialectText, "no profile component")
}

func legacyGiveSkin(command string) (player, texture string, err error) {
	start := strings.Index(command, legacyGiveMarker) + len(legacyGiveMarker) - 1
	v, _, err := snbt.ParseAt(command, start)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", head.ErrMalformedDialectText, err)
	}
	owner, ok := snbt.Lookup(v, "SkullOwner")
	if !ok {
		return "", "", head.Errorf("read give tag", command, head.ErrMalformedDialectText, "no SkullOwner")
	}
	return decodeSkullOwner(owner)
}
