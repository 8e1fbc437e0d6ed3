package native

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/diarykeep/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func TestHostDir(t *testing.T) {
	tempDir := t.TempDir()
	old := userConfigDirFunc
	defer func() { userConfigDirFunc = old }()
	userConfigDirFunc = func() (string, error) { return tempDir, nil }

	if dir, _ := HostDir("/explicit"); dir != "/explicit" {
		t.Errorf("expected override, got %s", dir)
	}

	expected := filepath.Join(tempDir, constants.HostAppIdentifier)
	dir, err := HostDir("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != expected {
		t.Errorf("expected %s, got %s", expected, dir)
	}

	if err := os.MkdirAll(expected, 0755); err != nil {
		t.Fatal(err)
	}
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, "/custom/host")
	if err := os.WriteFile(filepath.Join(expected, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	if dir, _ := HostDir(""); dir != "/custom/host" {
		t.Errorf("expected /custom/host, got %s", dir)
	}
}

func TestParseLockfile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", "8080|42|s3cret|/data\n", false},
		{"old three-part format", "8080|42|s3cret", true},
		{"garbage", "invalid", true},
		{"empty port", "|42|s3cret|/data", true},
		{"port out of range", "99999|42|s3cret|/data", true},
		{"bad pid", "8080|x|s3cret|/data", true},
		{"empty secret", "8080|42||/data", true},
		{"empty data dir", "8080|42|s3cret|", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseLockfile(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLockfile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (h.Port != 8080 || h.PID != 42 || h.Secret != "s3cret" || h.DataDir != "/data") {
				t.Errorf("unexpected host %+v", h)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	old := findProcessFunc
	defer func() { findProcessFunc = old }()

	dir := t.TempDir()
	if _, err := Detect(dir); !errors.Is(err, ErrHostNotRunning) {
		t.Errorf("expected ErrHostNotRunning for missing lockfile, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, constants.HostLockfileName), []byte("8080|42|s3cret|/data"), 0644); err != nil {
		t.Fatal(err)
	}

	findProcessFunc = func(int) (ps.Process, error) { return nil, nil }
	if _, err := Detect(dir); !errors.Is(err, ErrHostNotRunning) {
		t.Errorf("expected ErrHostNotRunning for dead pid, got %v", err)
	}

	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "other-app"}, nil
	}
	if _, err := Detect(dir); err == nil {
		t.Error("expected error for wrong executable")
	}

	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "diarykeep-host"}, nil
	}
	h, err := Detect(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.WidgetDataPath() != filepath.Join("/data", constants.WidgetDataFile) {
		t.Errorf("unexpected widget path %s", h.WidgetDataPath())
	}
}

func testHost(t *testing.T, handler http.HandlerFunc) *Host {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return &Host{Port: port, Secret: "test-secret", DataDir: t.TempDir()}
}

func TestRefreshWidgets(t *testing.T) {
	var hits int
	h := testHost(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/widgets/refresh" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get(secretHeader) != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			return
		}
		hits++
		w.WriteHeader(http.StatusOK)
	})

	if err := h.RefreshWidgets(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected 1 refresh, got %d", hits)
	}

	h.Secret = "wrong"
	if err := h.RefreshWidgets(context.Background()); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestNotify(t *testing.T) {
	var got notifyPayload
	h := testHost(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notify" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Body == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := h.Notify(context.Background(), "write today"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != constants.AppName || got.Body != "write today" {
		t.Errorf("unexpected payload %+v", got)
	}
	if err := h.Notify(context.Background(), "fail"); err == nil {
		t.Error("expected error for server failure")
	}
}
