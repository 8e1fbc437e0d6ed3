package stats

import (
	"reflect"
	"testing"

	"github.com/julianstephens/diarykeep/internal/models"
)

func tagSnapshot() models.Snapshot {
	return models.Snapshot{
		"2024-03-01": {Content: "a", Tags: []string{"work", "fun"}},
		"2024-03-03": {Content: "b", Tags: []string{"work"}},
		"2024-03-02": {Content: "c", Tags: []string{"travel"}},
	}
}

func TestAllTags(t *testing.T) {
	if got := AllTags(tagSnapshot()); !reflect.DeepEqual(got, []string{"fun", "travel", "work"}) {
		t.Errorf("AllTags() = %v", got)
	}
}

func TestTagCounts(t *testing.T) {
	got := TagCounts(tagSnapshot())
	want := map[string]int{"work": 2, "fun": 1, "travel": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TagCounts() = %v, want %v", got, want)
	}
}

func TestEntriesByTag(t *testing.T) {
	if got := EntriesByTag(tagSnapshot(), "#Work"); !reflect.DeepEqual(got, []string{"2024-03-03", "2024-03-01"}) {
		t.Errorf("EntriesByTag() = %v", got)
	}
	if got := EntriesByTag(tagSnapshot(), "none"); len(got) != 0 {
		t.Errorf("EntriesByTag() for unused tag = %v", got)
	}
}

func TestSearch(t *testing.T) {
	long := "Went to the BEACH and watched the sunset over the water for a long long long long time"
	snap := models.Snapshot{
		"2024-03-01": {Content: "first line\nthe beach was cold"},
		"2024-03-05": {Content: long},
		"2024-03-03": {Content: "nothing here"},
	}

	got := Search(snap, "  beach ")
	if len(got) != 2 {
		t.Fatalf("len(Search()) = %d, want 2", len(got))
	}
	if got[0].DateKey != "2024-03-05" || got[1].DateKey != "2024-03-01" {
		t.Errorf("order = %s, %s; want newest first", got[0].DateKey, got[1].DateKey)
	}
	if got[1].Preview != "the beach was cold" {
		t.Errorf("Preview = %q, want the matching line", got[1].Preview)
	}
	if r := []rune(got[0].Preview); len(r) != 83 || string(r[80:]) != "..." {
		t.Errorf("long Preview = %q, want 80 runes plus ...", got[0].Preview)
	}
	if Search(snap, "   ") != nil {
		t.Error("blank query should return nil")
	}
}

func TestPlaces(t *testing.T) {
	snap := models.Snapshot{
		"2024-03-01": {Content: "a", Location: &models.Location{Name: "Home"}},
		"2024-03-04": {Content: "b", Location: &models.Location{Name: "Cafe"}},
		"2024-03-02": {Content: "c", Location: &models.Location{Name: "Home"}},
		"2024-03-03": {Content: "d", Location: &models.Location{}},
	}

	got := Places(snap)
	if len(got) != 3 || got[0].DateKey != "2024-03-04" || got[2].DateKey != "2024-03-01" {
		t.Errorf("Places() = %+v", got)
	}
	byName := PlacesByName(snap)
	if len(byName["Home"]) != 2 || byName["Home"][0].DateKey != "2024-03-02" {
		t.Errorf("PlacesByName()[Home] = %+v", byName["Home"])
	}
}
