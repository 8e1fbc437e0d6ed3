package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/diarykeep/internal/constants"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/models"
)

// Verifier asks the platform to confirm the user, e.g. a fingerprint prompt.
type Verifier func(ctx context.Context) (bool, error)

// Lock is the app lock. Unlocked state lasts for the life of the value.
type Lock struct {
	store *Store

	mu       sync.Mutex
	unlocked bool
}

func (s *Store) Lock() *Lock {
	return &Lock{store: s}
}

// Settings returns the lock record. A clear-text password from an old record
// is replaced by its hash and saved.
func (l *Lock) Settings() models.LockSettings {
	var ls models.LockSettings
	raw := l.store.raw(constants.PartitionLock)
	if len(raw) == 0 {
		return ls
	}
	if err := json.Unmarshal(raw, &ls); err != nil {
		logger.Warn("Lock settings are malformed, lock disabled", "error", err)
		return models.LockSettings{}
	}
	if ls.LegacyPassword != "" {
		if ls.PINHash == "" {
			hash, err := hashPIN(ls.LegacyPassword)
			if err != nil {
				logger.Warn("Failed to hash legacy lock password", "error", err)
				return ls
			}
			ls.PINHash = hash
		}
		ls.LegacyPassword = ""
		if err := l.store.put(constants.PartitionLock, ls); err != nil {
			logger.Warn("Failed to upgrade lock settings", "error", err)
		}
	}
	return ls
}

// IsLocked reports whether the lock is enabled and not yet opened.
func (l *Lock) IsLocked() bool {
	l.mu.Lock()
	unlocked := l.unlocked
	l.mu.Unlock()
	return !unlocked && l.Settings().Enabled
}

// SetPIN enables the lock with pin. The pin must be 4 to 6 digits.
func (l *Lock) SetPIN(pin string) error {
	if !validPIN(pin) {
		return apperrors.ErrInvalidPIN
	}
	hash, err := hashPIN(pin)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}
	ls := l.Settings()
	ls.Enabled = true
	ls.PINHash = hash
	return l.store.put(constants.PartitionLock, ls)
}

// Remove disables the lock and clears the PIN and biometric flag.
func (l *Lock) Remove() error {
	if err := l.store.put(constants.PartitionLock, models.LockSettings{}); err != nil {
		return err
	}
	l.mu.Lock()
	l.unlocked = true
	l.mu.Unlock()
	return nil
}

func (l *Lock) SetBiometric(enabled bool) error {
	ls := l.Settings()
	ls.UseBiometric = enabled
	return l.store.put(constants.PartitionLock, ls)
}

// Unlock opens the lock when pin matches.
func (l *Lock) Unlock(pin string) bool {
	ls := l.Settings()
	if ls.PINHash == "" {
		return false
	}
	if bcrypt.CompareHashAndPassword([]byte(ls.PINHash), []byte(pin)) != nil {
		return false
	}
	l.open()
	return true
}

// UnlockWithBiometric opens the lock when biometrics are enabled and verify
// confirms the user. Errors from verify count as a refusal.
func (l *Lock) UnlockWithBiometric(ctx context.Context, verify Verifier) bool {
	if verify == nil || !l.Settings().UseBiometric {
		return false
	}
	ok, err := verify(ctx)
	if err != nil {
		logger.Warn("Biometric verification failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	l.open()
	return true
}

func (l *Lock) open() {
	l.mu.Lock()
	l.unlocked = true
	l.mu.Unlock()
}

func validPIN(pin string) bool {
	if len(pin) < constants.MinPINLength || len(pin) > constants.MaxPINLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hashPIN(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
