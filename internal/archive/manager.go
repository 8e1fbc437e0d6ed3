package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/diary"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/storage"
)

// Info describes a stored archive.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager keeps timestamped archives in one directory and rotates old ones.
type Manager struct {
	dir      string
	diary    *diary.Store
	provider storage.Provider
	now      func() time.Time
}

// NewManager stores archives in <configDir>/backups.
func NewManager(configDir string, d *diary.Store, p storage.Provider) *Manager {
	return &Manager{
		dir:      filepath.Join(configDir, constants.BackupDirName),
		diary:    d,
		provider: p,
		now:      time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a new archive and removes the oldest beyond MaxBackups.
func (m *Manager) Create(ctx context.Context) (string, error) {
	return m.create(ctx, false)
}

func (m *Manager) create(ctx context.Context, skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest, err := m.nextPath()
	if err != nil {
		return "", err
	}
	if err := m.ExportTo(ctx, dest); err != nil {
		return "", err
	}

	if !skipRotation {
		if err := m.rotate(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return dest, nil
}

// nextPath picks a free name: minute precision, then seconds, then a counter.
func (m *Manager) nextPath() (string, error) {
	now := m.now()
	name := func(stamp string) string {
		return filepath.Join(m.dir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	}

	p := name(now.Format("20060102-1504"))
	if !exists(p) {
		return p, nil
	}
	stamp := now.Format("20060102-150405")
	p = name(stamp)
	for counter := 1; exists(p); counter++ {
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		p = name(fmt.Sprintf("%s-%d", stamp, counter))
	}
	return p, nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// ExportTo writes an archive to dest through a temp file in the same directory.
func (m *Manager) ExportTo(ctx context.Context, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".export-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Export(ctx, tmp, m.diary, m.provider); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to export diary: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// List returns archives in the backup directory, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Path:      filepath.Join(m.dir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Path > out[j].Path
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// parseName extracts the timestamp from diarykeep-YYYYMMDD-HHMM[SS][-N].zip.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	parts := strings.Split(stamp, "-")
	if len(parts) == 3 && isDigits(parts[2]) {
		stamp = parts[0] + "-" + parts[1]
	}
	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if ts, err := time.ParseInLocation(layout, stamp, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (m *Manager) rotate() error {
	list, err := m.List()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(list); i++ {
		if err := os.Remove(list[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", list[i].Path, err)
		}
	}
	return nil
}

// Restore archives the current state, then imports path over it.
func (m *Manager) Restore(ctx context.Context, path string) (Result, string, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, "", fmt.Errorf("backup file does not exist: %s", path)
	}
	safety, err := m.create(ctx, true)
	if err != nil {
		return Result{}, "", fmt.Errorf("failed to back up current diary before restore: %w", err)
	}
	res, err := ImportFile(ctx, path, m.diary)
	if err != nil {
		return Result{}, safety, err
	}
	return res, safety, nil
}
