package tagcolor

import "testing"

func TestForIsDeterministic(t *testing.T) {
	a := For("research")
	b := For("research")
	if a != b {
		t.Errorf("color not stable: %q vs %q", a, b)
	}
}

func TestForReturnsPaletteEntry(t *testing.T) {
	names := []string{"a", "work", "очень-длинный-тег", "x-y-z", ""}
	for _, name := range names {
		c := For(name)
		found := false
		for _, p := range palette {
			if c == p {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("For(%q) = %q not in palette", name, c)
		}
	}
}
