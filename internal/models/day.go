package models

import (
	"sort"
	"strings"
)

// Mood is the optional per-day mood. The zero value means unset.
type Mood string

const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodBad   Mood = "bad"
	MoodAwful Mood = "awful"
)

// Moods lists the valid moods from best to worst.
var Moods = []Mood{MoodGreat, MoodGood, MoodOkay, MoodBad, MoodAwful}

// ParseMood returns the mood named by s, or the unset mood for anything unknown.
func ParseMood(s string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m
	}
	return ""
}

func (m Mood) Valid() bool {
	for _, v := range Moods {
		if m == v {
			return true
		}
	}
	return false
}

// PhotoRef points at a photo blob by filename. Base64 is only populated when
// the blob write failed or for records written by old versions.
type PhotoRef struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Timestamp int64  `json:"timestamp"` // unix ms
	Base64    string `json:"base64,omitempty"`
}

type VoiceNoteRef struct {
	Filename  string `json:"filename"`
	Duration  int    `json:"duration"`  // seconds
	Timestamp int64  `json:"timestamp"` // unix ms
	Base64    string `json:"base64,omitempty"`
}

type Location struct {
	Name      string   `json:"name"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	CreatedAt int64    `json:"createdAt,omitempty"`
}

type Weather struct {
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
}

// DayRecord is everything stored for one calendar day.
type DayRecord struct {
	Content    string          `json:"content"`
	Photos     []PhotoRef      `json:"photos"`
	VoiceNotes []VoiceNoteRef  `json:"voiceNotes,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	Location   *Location       `json:"location,omitempty"`
	Weather    *Weather        `json:"weather,omitempty"`
	Habits     map[string]bool `json:"habits,omitempty"`
	Mood       Mood            `json:"mood,omitempty"`
}

// HasEntry reports whether the day counts as written: non-blank content or
// at least one photo.
func (d DayRecord) HasEntry() bool {
	return strings.TrimSpace(d.Content) != "" || len(d.Photos) > 0
}

// IsEmpty reports whether the record carries nothing worth keeping and should
// be pruned from the snapshot.
func (d DayRecord) IsEmpty() bool {
	if strings.TrimSpace(d.Content) != "" || len(d.Photos) > 0 || len(d.VoiceNotes) > 0 {
		return false
	}
	for _, done := range d.Habits {
		if done {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of d.
func (d DayRecord) Clone() DayRecord {
	out := d
	if d.Photos != nil {
		out.Photos = append([]PhotoRef(nil), d.Photos...)
	}
	if d.VoiceNotes != nil {
		out.VoiceNotes = append([]VoiceNoteRef(nil), d.VoiceNotes...)
	}
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	if d.Location != nil {
		loc := *d.Location
		out.Location = &loc
	}
	if d.Weather != nil {
		w := *d.Weather
		out.Weather = &w
	}
	if d.Habits != nil {
		out.Habits = make(map[string]bool, len(d.Habits))
		for k, v := range d.Habits {
			out.Habits[k] = v
		}
	}
	return out
}

// HasPhoto reports whether a photo ref with the given filename exists.
func (d DayRecord) HasPhoto(filename string) bool {
	for _, p := range d.Photos {
		if p.Filename == filename {
			return true
		}
	}
	return false
}

func (d DayRecord) HasVoiceNote(filename string) bool {
	for _, v := range d.VoiceNotes {
		if v.Filename == filename {
			return true
		}
	}
	return false
}

// Snapshot maps day keys to records. A snapshot handed out by the store is
// never mutated afterwards; writers build a new one with With/Without.
type Snapshot map[string]DayRecord

// With returns a copy of s with key set to rec, or removed when rec is empty.
func (s Snapshot) With(key string, rec DayRecord) Snapshot {
	out := make(Snapshot, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	if rec.IsEmpty() {
		delete(out, key)
	} else {
		out[key] = rec
	}
	return out
}

// Without returns a copy of s with key removed.
func (s Snapshot) Without(key string) Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// Merge returns s with every day of other overwriting the same day in s.
func (s Snapshot) Merge(other Snapshot) Snapshot {
	out := make(Snapshot, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Keys returns the day keys in ascending order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MetaPatch is a partial update of a day's metadata. Nil fields are left alone.
type MetaPatch struct {
	Tags          *[]string
	Location      *Location
	ClearLocation bool
	Weather       *Weather
	ClearWeather  bool
	Habits        map[string]bool // replaces the day's habit map when non-nil
	Mood          *Mood
}

// Apply returns d with the patch applied. d is not modified.
func (p MetaPatch) Apply(d DayRecord) DayRecord {
	out := d.Clone()
	if p.Tags != nil {
		out.Tags = NormalizeTags(*p.Tags)
	}
	switch {
	case p.ClearLocation:
		out.Location = nil
	case p.Location != nil:
		loc := *p.Location
		out.Location = &loc
	}
	switch {
	case p.ClearWeather:
		out.Weather = nil
	case p.Weather != nil:
		w := *p.Weather
		out.Weather = &w
	}
	if p.Habits != nil {
		out.Habits = make(map[string]bool, len(p.Habits))
		for k, v := range p.Habits {
			out.Habits[k] = v
		}
	}
	if p.Mood != nil {
		out.Mood = ParseMood(string(*p.Mood))
	}
	return out
}
