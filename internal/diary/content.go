package diary

import (
	"fmt"
	"strings"

	"github.com/julianstephens/diarykeep/internal/blob"
	"github.com/julianstephens/diarykeep/internal/constants"
)

const (
	uncheckedPrefix = constants.TaskUnchecked + " "
	checkedPrefix   = constants.TaskChecked + " "
)

// PhotoMarker is the content line that places a photo inline.
func PhotoMarker(filename string) string {
	return "[photo:" + filename + "]"
}

// appendLine adds line to content on its own line.
func appendLine(content, line string) string {
	if content == "" {
		return line
	}
	return content + "\n" + line
}

// removeMarker drops every line that is the marker, ignoring surrounding
// whitespace. It reports whether anything was removed.
func removeMarker(content, marker string) (string, bool) {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	removed := false
	for _, line := range lines {
		if strings.TrimSpace(line) == marker {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return content, false
	}
	return strings.Join(kept, "\n"), true
}

// PhotoMarkers returns the filenames referenced by photo marker lines, in order.
func PhotoMarkers(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[photo:") && strings.HasSuffix(line, "]") {
			out = append(out, strings.TrimSuffix(strings.TrimPrefix(line, "[photo:"), "]"))
		}
	}
	return out
}

// TaskLine formats text as an unchecked task line.
func TaskLine(text string, done bool) string {
	if done {
		return checkedPrefix + text
	}
	return uncheckedPrefix + text
}

// toggleTaskLine flips the checkbox on line index i.
func toggleTaskLine(content string, i int) (string, error) {
	lines := strings.Split(content, "\n")
	if i < 0 || i >= len(lines) {
		return "", fmt.Errorf("line %d out of range (0-%d)", i, len(lines)-1)
	}
	switch {
	case strings.HasPrefix(lines[i], uncheckedPrefix):
		lines[i] = checkedPrefix + strings.TrimPrefix(lines[i], uncheckedPrefix)
	case strings.HasPrefix(lines[i], checkedPrefix):
		lines[i] = uncheckedPrefix + strings.TrimPrefix(lines[i], checkedPrefix)
	default:
		return "", fmt.Errorf("line %d is not a task", i)
	}
	return strings.Join(lines, "\n"), nil
}

// normalizeMedia strips a data URI prefix and returns the payload as padded
// standard base64. Input that does not decode is rejected.
func normalizeMedia(raw string) (string, error) {
	data, err := blob.Normalize(stripDataURI(raw))
	if err != nil {
		return "", fmt.Errorf("invalid data: %w", err)
	}
	return data, nil
}

// stripDataURI removes a "data:<mime>;base64," prefix if present.
func stripDataURI(raw string) string {
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ","); i >= 0 {
			return raw[i+1:]
		}
	}
	return raw
}
