// Package native talks to the companion host process that owns the home
// screen widgets and the daily reminder on the device.
package native

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/diarykeep/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
	httpClient        = &http.Client{Timeout: constants.HostRefreshTimeout}

	// ErrHostNotRunning is returned when no live host owns the lockfile.
	ErrHostNotRunning = errors.New("diarykeep-host is not running")
)

const secretHeader = "X-Diarykeep-Secret"

// Host is a running host process as advertised by its lockfile.
type Host struct {
	Port    int
	PID     int
	Secret  string
	DataDir string
}

// HostDir returns the directory holding the host lockfile. A non-empty
// override wins; otherwise the host's own settings may redirect it.
func HostDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	hostDir := filepath.Join(configDir, constants.HostAppIdentifier)

	data, err := os.ReadFile(filepath.Join(hostDir, "settings.json"))
	if err != nil {
		return hostDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil {
		if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
			return *store.Settings.LockfileDir, nil
		}
	}
	return hostDir, nil
}

// ParseLockfile parses "port|pid|secret|dataDir".
func ParseLockfile(content string) (Host, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 4 {
		return Host{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Host{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return Host{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Host{}, errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(parts[2]) == "" {
		return Host{}, errors.New("secret in lockfile is empty")
	}
	if strings.TrimSpace(parts[3]) == "" {
		return Host{}, errors.New("data directory in lockfile is empty")
	}
	return Host{Port: port, PID: pid, Secret: parts[2], DataDir: parts[3]}, nil
}

// Detect reads the lockfile in dir and checks that its pid is a live host.
func Detect(dir string) (*Host, error) {
	content, err := os.ReadFile(filepath.Join(dir, constants.HostLockfileName))
	if err != nil {
		return nil, ErrHostNotRunning
	}
	h, err := ParseLockfile(string(content))
	if err != nil {
		return nil, err
	}

	process, err := findProcessFunc(h.PID)
	if err != nil || process == nil {
		return nil, ErrHostNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.HostExecutable) {
		return nil, fmt.Errorf("process with PID %d is not %s (is %s)", h.PID, constants.HostExecutable, process.Executable())
	}
	return &h, nil
}

// WidgetDataPath is where the host reads the widget projection from.
func (h *Host) WidgetDataPath() string {
	return filepath.Join(h.DataDir, constants.WidgetDataFile)
}

// RefreshWidgets asks the host to reload every widget.
func (h *Host) RefreshWidgets(ctx context.Context) error {
	return h.post(ctx, "/widgets/refresh", nil)
}

type notifyPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notify shows a notification through the host.
func (h *Host) Notify(ctx context.Context, body string) error {
	return h.post(ctx, "/notify", notifyPayload{Title: constants.AppName, Body: body})
}

func (h *Host) post(ctx context.Context, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	url := fmt.Sprintf("http://127.0.0.1:%d%s", h.Port, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, h.Secret)

	res, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(res.Body)
	return fmt.Errorf("host request %s failed with status %d: %s", path, res.StatusCode, string(msg))
}
