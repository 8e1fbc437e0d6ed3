package diary

import (
	"reflect"
	"testing"
)

func TestRemoveMarker(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		removed bool
	}{
		{"only marker", "[photo:a.jpg]", "", true},
		{"middle", "x\n[photo:a.jpg]\ny", "x\ny", true},
		{"padded", "x\n\t[photo:a.jpg]  ", "x", true},
		{"repeated", "[photo:a.jpg]\n[photo:a.jpg]", "", true},
		{"inline text kept", "see [photo:a.jpg] here", "see [photo:a.jpg] here", false},
		{"other photo", "[photo:b.jpg]", "[photo:b.jpg]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := removeMarker(tt.content, PhotoMarker("a.jpg"))
			if got != tt.want || removed != tt.removed {
				t.Errorf("removeMarker() = %q, %v; want %q, %v", got, removed, tt.want, tt.removed)
			}
		})
	}
}

func TestPhotoMarkers(t *testing.T) {
	got := PhotoMarkers("a\n[photo:1.jpg]\n b \n [photo:2.jpg] ")
	if !reflect.DeepEqual(got, []string{"1.jpg", "2.jpg"}) {
		t.Errorf("PhotoMarkers() = %v", got)
	}
}

func TestStripDataURI(t *testing.T) {
	tests := map[string]string{
		"data:image/jpeg;base64,QUJD": "QUJD",
		"QUJD":                        "QUJD",
		"data:broken":                 "data:broken",
	}
	for in, want := range tests {
		if got := stripDataURI(in); got != want {
			t.Errorf("stripDataURI(%q) = %q, want %q", in, got, want)
		}
	}
}
