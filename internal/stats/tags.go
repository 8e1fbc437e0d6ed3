package stats

import (
	"sort"

	"github.com/julianstephens/diarykeep/internal/models"
)

// AllTags returns every tag in use, sorted.
func AllTags(snap models.Snapshot) []string {
	set := make(map[string]struct{})
	for _, rec := range snap {
		for _, tag := range rec.Tags {
			set[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// TagCounts returns the number of days carrying each tag.
func TagCounts(snap models.Snapshot) map[string]int {
	counts := make(map[string]int)
	for _, rec := range snap {
		for _, tag := range rec.Tags {
			counts[tag]++
		}
	}
	return counts
}

// EntriesByTag returns the day keys tagged with tag, newest first.
func EntriesByTag(snap models.Snapshot, tag string) []string {
	tag = models.NormalizeTag(tag)
	var keys []string
	for key, rec := range snap {
		for _, t := range rec.Tags {
			if t == tag {
				keys = append(keys, key)
				break
			}
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}
