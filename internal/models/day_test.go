package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDayRecord_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rec  DayRecord
		want bool
	}{
		{"zero value", DayRecord{}, true},
		{"whitespace content", DayRecord{Content: "  \n\t"}, true},
		{"content", DayRecord{Content: "hello"}, false},
		{"photo only", DayRecord{Photos: []PhotoRef{{Filename: "photo_1.jpg"}}}, false},
		{"voice only", DayRecord{VoiceNotes: []VoiceNoteRef{{Filename: "voice_1.m4a"}}}, false},
		{"habit done", DayRecord{Habits: map[string]bool{"h1": true}}, false},
		{"habit not done", DayRecord{Habits: map[string]bool{"h1": false}}, true},
		{"tags alone", DayRecord{Tags: []string{"work"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayRecord_HasEntry(t *testing.T) {
	if (DayRecord{VoiceNotes: []VoiceNoteRef{{Filename: "v"}}}).HasEntry() {
		t.Error("voice note alone should not count as an entry")
	}
	if !(DayRecord{Photos: []PhotoRef{{Filename: "p"}}}).HasEntry() {
		t.Error("photo alone should count as an entry")
	}
	if !(DayRecord{Content: "x"}).HasEntry() {
		t.Error("content should count as an entry")
	}
}

func TestDayRecord_CloneIsDeep(t *testing.T) {
	lat := 1.5
	orig := DayRecord{
		Content:  "a",
		Photos:   []PhotoRef{{Filename: "p1"}},
		Tags:     []string{"x"},
		Location: &Location{Name: "here", Lat: &lat},
		Habits:   map[string]bool{"h": true},
	}
	c := orig.Clone()
	c.Photos[0].Filename = "changed"
	c.Tags[0] = "y"
	c.Location.Name = "there"
	c.Habits["h"] = false

	if orig.Photos[0].Filename != "p1" || orig.Tags[0] != "x" || orig.Location.Name != "here" || !orig.Habits["h"] {
		t.Errorf("Clone shares state with original: %+v", orig)
	}
}

func TestSnapshot_WithPrunesAndDoesNotMutate(t *testing.T) {
	base := Snapshot{"2024-01-01": {Content: "a"}}

	next := base.With("2024-01-02", DayRecord{Content: "b"})
	if len(base) != 1 {
		t.Fatalf("With mutated the receiver: %v", base)
	}
	if len(next) != 2 {
		t.Fatalf("expected 2 days, got %d", len(next))
	}

	pruned := next.With("2024-01-01", DayRecord{Content: "   "})
	if _, ok := pruned["2024-01-01"]; ok {
		t.Error("empty record was not pruned")
	}
	if _, ok := next["2024-01-01"]; !ok {
		t.Error("pruning mutated the previous snapshot")
	}
}

func TestSnapshot_MergeOverwritesWholeDay(t *testing.T) {
	existing := Snapshot{
		"2024-01-01": {Content: "old", Tags: []string{"keep"}},
		"2024-01-02": {Content: "untouched"},
	}
	imported := Snapshot{"2024-01-01": {Content: "new"}}

	merged := existing.Merge(imported)
	if merged["2024-01-01"].Content != "new" || len(merged["2024-01-01"].Tags) != 0 {
		t.Errorf("imported day should replace the whole day, got %+v", merged["2024-01-01"])
	}
	if merged["2024-01-02"].Content != "untouched" {
		t.Errorf("other days should survive, got %+v", merged["2024-01-02"])
	}
	if got := merged.Keys(); !reflect.DeepEqual(got, []string{"2024-01-01", "2024-01-02"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestMetaPatch_Apply(t *testing.T) {
	day := DayRecord{
		Content:  "text",
		Location: &Location{Name: "home"},
		Weather:  &Weather{Temp: 20, Condition: "Clear"},
		Habits:   map[string]bool{"a": true},
	}
	tags := []string{"Work", "#work", "Fun!", ""}
	mood := Mood("GREAT")

	out := MetaPatch{Tags: &tags, ClearLocation: true, Mood: &mood}.Apply(day)

	if !reflect.DeepEqual(out.Tags, []string{"work", "fun"}) {
		t.Errorf("Tags = %v", out.Tags)
	}
	if out.Location != nil {
		t.Error("location not cleared")
	}
	if out.Weather == nil || out.Weather.Condition != "Clear" {
		t.Error("weather should be untouched")
	}
	if out.Mood != MoodGreat {
		t.Errorf("Mood = %q, want great", out.Mood)
	}
	if day.Location == nil {
		t.Error("Apply mutated its input")
	}

	bogus := Mood("ecstatic")
	if got := (MetaPatch{Mood: &bogus}).Apply(day).Mood; got != "" {
		t.Errorf("unknown mood should be unset, got %q", got)
	}
}

func TestDayRecord_JSONShape(t *testing.T) {
	rec := DayRecord{
		Content:    "hi",
		Photos:     []PhotoRef{{Filename: "photo_1.jpg", Path: "p", Timestamp: 1}},
		VoiceNotes: []VoiceNoteRef{{Filename: "voice_1.m4a", Duration: 3, Timestamp: 2}},
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"content", "photos", "voiceNotes"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("missing key %q in %s", key, raw)
		}
	}
	for _, key := range []string{"tags", "location", "weather", "habits", "mood"} {
		if _, ok := generic[key]; ok {
			t.Errorf("empty field %q should be omitted in %s", key, raw)
		}
	}
}
