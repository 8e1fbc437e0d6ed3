package system

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/diarykeep/internal/cli"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
)

// promptPIN is replaced in tests.
var promptPIN = func(title string) (string, error) {
	var pin string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&pin).
		Run()
	return pin, err
}

func pinOrPrompt(pin, title string) (string, error) {
	if pin != "" {
		return pin, nil
	}
	p, err := promptPIN(title)
	if err != nil {
		return "", fmt.Errorf("interactive form error: %w", err)
	}
	return p, nil
}

type LockStatusCmd struct{}

func (c *LockStatusCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	s := a.Lock.Settings()
	if !s.Enabled {
		ctx.Println("App lock: off")
		return nil
	}
	ctx.Println("App lock: on")
	ctx.Printf("Biometric unlock: %v\n", s.UseBiometric)
	return nil
}

type LockSetCmd struct {
	PIN     string `arg:"" optional:"" name:"pin" help:"New PIN (4-6 digits). Prompted for when omitted."`
	Current string `help:"Current PIN, required when a lock is already set."`
}

func (c *LockSetCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if a.Lock.IsLocked() {
		current, err := pinOrPrompt(c.Current, "Current PIN")
		if err != nil {
			return err
		}
		if !a.Lock.Unlock(current) {
			return fmt.Errorf("%w: wrong PIN", apperrors.ErrPermissionDenied)
		}
	}
	pin, err := pinOrPrompt(c.PIN, "New PIN")
	if err != nil {
		return err
	}
	if err := a.Lock.SetPIN(pin); err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render("✓ PIN set"))
	return nil
}

type LockRemoveCmd struct {
	PIN string `arg:"" optional:"" name:"pin" help:"Current PIN. Prompted for when omitted."`
}

func (c *LockRemoveCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if !a.Lock.IsLocked() {
		ctx.Println("No lock is set.")
		return nil
	}
	pin, err := pinOrPrompt(c.PIN, "Current PIN")
	if err != nil {
		return err
	}
	if !a.Lock.Unlock(pin) {
		return fmt.Errorf("%w: wrong PIN", apperrors.ErrPermissionDenied)
	}
	if err := a.Lock.Remove(); err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Lock removed"))
	return nil
}

// LockUnlockCmd checks a PIN and reports whether it opens the lock.
type LockUnlockCmd struct {
	PIN string `arg:"" optional:"" name:"pin" help:"PIN to check. Prompted for when omitted."`
}

func (c *LockUnlockCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if !a.Lock.IsLocked() {
		ctx.Println("No lock is set.")
		return nil
	}
	pin, err := pinOrPrompt(c.PIN, "PIN")
	if err != nil {
		return err
	}
	if !a.Lock.Unlock(pin) {
		return fmt.Errorf("%w: wrong PIN", apperrors.ErrPermissionDenied)
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Unlocked"))
	return nil
}

type LockBiometricCmd struct {
	Enabled bool `arg:"" help:"Allow biometric unlock (true|false)."`
}

func (c *LockBiometricCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if err := a.Lock.SetBiometric(c.Enabled); err != nil {
		return err
	}
	ctx.Printf("Biometric unlock: %v\n", c.Enabled)
	return nil
}
