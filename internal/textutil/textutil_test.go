package textutil

import "testing"

func TestHash(t *testing.T) {
	t.Parallel()

	if got := Hash("Grian"); len(got) != 64 || got != Hash("Grian") || got == Hash("grian") {
		t.Errorf("Hash() = %s", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Grian", 10, "Grian"},
		{"Grian", 5, "Grian"},
		{"Zombie Villager", 6, "Zombie..."},
		{"§6§lGold", 2, "§6..."},
		{"", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
