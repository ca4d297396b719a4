package category

import "testing"

func TestSelectionDefaultsToAll(t *testing.T) {
	s := NewSelection()
	if !s.IsEmpty() {
		t.Error("fresh selection is not empty")
	}
	visible := s.Visible(Categories)
	if len(visible) != len(Categories) {
		t.Errorf("default view has %d categories, want all %d", len(visible), len(Categories))
	}
}

func TestSelectionToggleNarrowsView(t *testing.T) {
	s := NewSelection()
	s.Toggle("defi")

	visible := s.Visible(Categories)
	if len(visible) != 1 || visible[0].ID != "defi" {
		t.Errorf("visible = %+v, want only defi", visible)
	}

	s.Toggle("ai")
	visible = s.Visible(Categories)
	if len(visible) != 2 {
		t.Errorf("visible = %d categories, want 2", len(visible))
	}
}

func TestSelectionToggleBackToAll(t *testing.T) {
	s := NewSelection()
	s.Toggle("defi")
	s.Toggle("defi")

	if !s.IsEmpty() {
		t.Error("re-toggling the only selected category should return to all")
	}
	if got := len(s.Visible(Categories)); got != len(Categories) {
		t.Errorf("view has %d categories after returning to all, want %d", got, len(Categories))
	}
}

func TestSelectionAllClearsEverything(t *testing.T) {
	s := NewSelection()
	s.Toggle("defi")
	s.Toggle("ai")
	s.Toggle(AllID)

	if !s.IsEmpty() {
		t.Error("toggling the all pseudo-category did not clear the selection")
	}
}

func TestSelectionViewNeverEmpty(t *testing.T) {
	s := NewSelection()
	s.Toggle("defi")
	s.Toggle("defi")
	if len(s.Visible(Categories)) == 0 {
		t.Error("view collapsed to empty")
	}
}

func TestRegistryLookups(t *testing.T) {
	if c, ok := ByID("defi"); !ok || c.Name != "Defi" {
		t.Errorf("ByID(defi) = %+v, %v", c, ok)
	}
	if _, ok := ByID("nonexistent"); ok {
		t.Error("ByID of unknown id reported found")
	}
	if Title("nonexistent") != "nonexistent" {
		t.Errorf("Title fallback = %s", Title("nonexistent"))
	}

	for _, free := range FreeCategories {
		if !IsFree(free) {
			t.Errorf("IsFree(%s) = false", free)
		}
		if _, ok := ByID(free); !ok {
			t.Errorf("free category %s missing from registry", free)
		}
	}
	if IsFree("defi") {
		t.Error("IsFree(defi) = true")
	}
}
