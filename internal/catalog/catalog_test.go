package catalog

import "testing"

func TestLookup(t *testing.T) {
	c := New()

	def, ok := c.Lookup("textArea")
	if !ok {
		t.Fatal("expected textArea to be registered")
	}
	if def.DefaultHeight != 120 {
		t.Errorf("expected height 120, got %d", def.DefaultHeight)
	}
	if _, ok := c.Lookup("hologram"); ok {
		t.Error("expected unknown type to be missing")
	}
}

func TestAll_SortedByCategoryThenType(t *testing.T) {
	all := New().All()
	if len(all) != len(definitions) {
		t.Fatalf("expected %d definitions, got %d", len(definitions), len(all))
	}
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.Category > cur.Category || (prev.Category == cur.Category && prev.Type > cur.Type) {
			t.Errorf("out of order: %s/%s before %s/%s", prev.Category, prev.Type, cur.Category, cur.Type)
		}
	}
}

func TestDefaultProperties_FreshCopy(t *testing.T) {
	def, _ := New().Lookup("dropdown")

	first := def.DefaultProperties()
	first["options"].([]string)[0] = "changed"
	first["label"] = "changed"

	second := def.DefaultProperties()
	if got := second["options"].([]string)[0]; got != "Option 1" {
		t.Errorf("expected seed options untouched, got %q", got)
	}
	if second["label"] != "" {
		t.Errorf("expected empty label, got %v", second["label"])
	}
	if second["required"] != false {
		t.Errorf("expected required false, got %v", second["required"])
	}
}

func TestEveryDefinitionHasHeight(t *testing.T) {
	for _, d := range New().All() {
		if d.DefaultHeight <= 0 {
			t.Errorf("%s: expected positive default height", d.Type)
		}
		if d.Label == "" {
			t.Errorf("%s: expected label", d.Type)
		}
	}
}
