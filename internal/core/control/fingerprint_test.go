package control

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/example/formcraft/internal/ports/secondary"
)

func rec(id, sectionID string, y int) *secondary.ControlRecord {
	return &secondary.ControlRecord{
		ID:         id,
		Type:       "textInput",
		Name:       "Field " + id,
		SectionID:  sectionID,
		Position:   secondary.Position{Y: y},
		Properties: map[string]any{"label": ""},
	}
}

func controlsGenerator() *rapid.Generator[[]*secondary.ControlRecord] {
	return rapid.Custom(func(t *rapid.T) []*secondary.ControlRecord {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		out := make([]*secondary.ControlRecord, n)
		for i := range out {
			props := map[string]any{}
			nprops := rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("props%d", i))
			for p := 0; p < nprops; p++ {
				props[fmt.Sprintf("p%d", p)] = p
			}
			out[i] = &secondary.ControlRecord{
				ID:         fmt.Sprintf("c-%03d", i),
				Type:       rapid.SampledFrom([]string{"textInput", "textArea", "dropdown"}).Draw(t, fmt.Sprintf("type%d", i)),
				Name:       rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(t, fmt.Sprintf("name%d", i)),
				SectionID:  rapid.SampledFrom([]string{"default", "s1", "s2"}).Draw(t, fmt.Sprintf("section%d", i)),
				Position:   secondary.Position{Y: rapid.IntRange(0, 20).Draw(t, fmt.Sprintf("y%d", i))},
				Properties: props,
			}
		}
		return out
	})
}

func TestFingerprint_PermutationInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		controls := controlsGenerator().Draw(t, "controls")
		perm := rapid.Permutation(controls).Draw(t, "perm")

		if Fingerprint(controls) != Fingerprint(perm) {
			t.Fatalf("fingerprint differs for a permutation of the same controls")
		}
	})
}

func TestFingerprint_NeverInitial(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		controls := controlsGenerator().Draw(t, "controls")
		if Fingerprint(controls) == InitialFingerprint {
			t.Fatalf("fingerprint collided with the initial value")
		}
	})
}

func TestFingerprint_Sensitivity(t *testing.T) {
	base := []*secondary.ControlRecord{rec("a", "default", 0), rec("b", "default", 1)}
	want := Fingerprint(base)

	tests := []struct {
		name   string
		mutate func(c *secondary.ControlRecord)
	}{
		{"type", func(c *secondary.ControlRecord) { c.Type = "textArea" }},
		{"name", func(c *secondary.ControlRecord) { c.Name = "Renamed" }},
		{"section", func(c *secondary.ControlRecord) { c.SectionID = "s1" }},
		{"y", func(c *secondary.ControlRecord) { c.Position.Y = 7 }},
		{"property count", func(c *secondary.ControlRecord) { c.Properties["extra"] = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := []*secondary.ControlRecord{base[0].Clone(), base[1].Clone()}
			tt.mutate(changed[1])
			if got := Fingerprint(changed); got == want {
				t.Errorf("changing %s did not change the fingerprint", tt.name)
			}
		})
	}
}

func TestFingerprint_IgnoresUntrackedFields(t *testing.T) {
	base := []*secondary.ControlRecord{rec("a", "default", 0)}
	changed := []*secondary.ControlRecord{base[0].Clone()}
	changed[0].Size = secondary.Size{Width: 300, Height: 90}
	changed[0].Properties["label"] = "different value, same count"

	if Fingerprint(base) != Fingerprint(changed) {
		t.Error("size and property values are not part of the fingerprint")
	}
}

func TestFingerprint_EmptyList(t *testing.T) {
	if Fingerprint(nil) != Fingerprint([]*secondary.ControlRecord{}) {
		t.Error("nil and empty lists should fingerprint the same")
	}
}
