package diary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/diarykeep/internal/models"
)

// shape identifies which historical layout a stored day was written in.
type shape int

const (
	// content string plus photos array
	shapeCurrent shape = iota
	// content string without a photos array
	shapeContentOnly
	// items[] of notes and tasks
	shapeItems
	// diary string plus todos[]
	shapeDiaryTodos
)

type legacyItem struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type probe struct {
	Content json.RawMessage `json:"content"`
	Photos  json.RawMessage `json:"photos"`
	Items   json.RawMessage `json:"items"`
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isPresent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && !bytes.Equal(raw, []byte("false"))
}

func detectShape(raw json.RawMessage) shape {
	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return shapeDiaryTodos
	}
	switch {
	case isJSONString(p.Content) && isJSONArray(p.Photos):
		return shapeCurrent
	case isJSONString(p.Content):
		return shapeContentOnly
	case isPresent(p.Items):
		return shapeItems
	default:
		return shapeDiaryTodos
	}
}

// Migrate decodes the stored diary partition, normalising every historical
// day layout to a DayRecord. Days that end up empty are dropped.
func Migrate(raw json.RawMessage) (models.Snapshot, error) {
	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode diary data: %w", err)
	}

	out := make(models.Snapshot, len(days))
	for key, dayRaw := range days {
		rec := migrateDay(dayRaw)
		if !rec.IsEmpty() {
			out[key] = rec
		}
	}
	return out, nil
}

func migrateDay(raw json.RawMessage) models.DayRecord {
	switch detectShape(raw) {
	case shapeCurrent:
		var rec models.DayRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return decodeLoose(raw)
		}
		return normalize(rec)
	case shapeContentOnly:
		return decodeLoose(raw)
	case shapeItems:
		var old struct {
			Items []legacyItem `json:"items"`
		}
		_ = json.Unmarshal(raw, &old)
		lines := make([]string, 0, len(old.Items))
		for _, it := range old.Items {
			if it.Type == "task" {
				lines = append(lines, TaskLine(it.Text, it.Completed))
			} else {
				lines = append(lines, it.Text)
			}
		}
		return models.DayRecord{Content: strings.Join(lines, "\n")}
	default:
		var old struct {
			Diary string       `json:"diary"`
			Todos []legacyItem `json:"todos"`
		}
		_ = json.Unmarshal(raw, &old)
		var lines []string
		if old.Diary != "" {
			lines = append(lines, old.Diary)
		}
		for _, todo := range old.Todos {
			lines = append(lines, TaskLine(todo.Text, todo.Completed))
		}
		return models.DayRecord{Content: strings.Join(lines, "\n")}
	}
}

// decodeLoose decodes field by field so one malformed field does not lose
// the rest of the day. Photos are dropped unless they decode as an array.
func decodeLoose(raw json.RawMessage) models.DayRecord {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.DayRecord{}
	}
	var rec models.DayRecord
	_ = json.Unmarshal(fields["content"], &rec.Content)
	if isJSONArray(fields["photos"]) {
		_ = json.Unmarshal(fields["photos"], &rec.Photos)
	}
	_ = json.Unmarshal(fields["voiceNotes"], &rec.VoiceNotes)
	_ = json.Unmarshal(fields["tags"], &rec.Tags)
	_ = json.Unmarshal(fields["location"], &rec.Location)
	_ = json.Unmarshal(fields["weather"], &rec.Weather)
	_ = json.Unmarshal(fields["habits"], &rec.Habits)
	_ = json.Unmarshal(fields["mood"], &rec.Mood)
	return normalize(rec)
}

func normalize(rec models.DayRecord) models.DayRecord {
	rec.Mood = models.ParseMood(string(rec.Mood))
	rec.Tags = models.NormalizeTags(rec.Tags)
	return rec
}

// encodeSnapshot writes photos as [] rather than null so the current shape
// is recognised on the next load.
func encodeSnapshot(s models.Snapshot) ([]byte, error) {
	out := make(map[string]models.DayRecord, len(s))
	for k, v := range s {
		if v.Photos == nil {
			v.Photos = []models.PhotoRef{}
		}
		out[k] = v
	}
	return json.Marshal(out)
}
