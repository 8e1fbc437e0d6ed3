package stats

import (
	"sort"
	"strings"

	"github.com/julianstephens/diarykeep/internal/models"
)

const previewLen = 80

type SearchResult struct {
	DateKey string `json:"dateKey"`
	Preview string `json:"preview"`
}

// Search finds days whose content contains query, ignoring case. The
// preview is the first matching line cut to 80 characters. Newest first.
func Search(snap models.Snapshot, query string) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []SearchResult
	for key, rec := range snap {
		if !strings.Contains(strings.ToLower(rec.Content), q) {
			continue
		}
		lines := strings.Split(rec.Content, "\n")
		match := lines[0]
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line), q) {
				match = line
				break
			}
		}
		out = append(out, SearchResult{DateKey: key, Preview: truncate(match, previewLen, "...")})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateKey > out[j].DateKey })
	return out
}

type Place struct {
	DateKey string `json:"dateKey"`
	models.Location
}

// Places lists every day with a named location, newest first.
func Places(snap models.Snapshot) []Place {
	var out []Place
	for key, rec := range snap {
		if rec.Location != nil && rec.Location.Name != "" {
			out = append(out, Place{DateKey: key, Location: *rec.Location})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateKey > out[j].DateKey })
	return out
}

// PlacesByName groups Places by location name.
func PlacesByName(snap models.Snapshot) map[string][]Place {
	out := make(map[string][]Place)
	for _, p := range Places(snap) {
		out[p.Name] = append(out[p.Name], p)
	}
	return out
}

// truncate cuts s to n runes and appends suffix when anything was cut.
func truncate(s string, n int, suffix string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + suffix
}
