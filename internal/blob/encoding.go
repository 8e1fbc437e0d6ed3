package blob

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode"
)

// ErrEmpty is returned by Normalize when nothing is left after trimming.
var ErrEmpty = errors.New("media data is empty")

// Decode reads base64 the way a browser's atob does: whitespace is ignored
// and trailing padding is optional.
func Decode(data string) ([]byte, error) {
	data = stripSpace(data)
	if b, err := base64.StdEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
}

// Normalize validates data and returns it as padded standard base64.
func Normalize(data string) (string, error) {
	data = stripSpace(data)
	if data == "" {
		return "", ErrEmpty
	}
	b, err := Decode(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
