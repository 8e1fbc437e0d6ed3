package system

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/keyring"
)

// promptPassword is replaced in tests.
var promptPassword = func() (string, error) {
	var pw string
	err := huh.NewInput().
		Title("PostgreSQL password").
		EchoMode(huh.EchoModePassword).
		Value(&pw).
		Run()
	return pw, err
}

// KeyringSetCmd stores the PostgreSQL password in the OS keyring.
type KeyringSetCmd struct {
	Password string `arg:"" optional:"" help:"Password to store. Prompted for when omitted."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	pw := cmd.Password
	if pw == "" {
		var err error
		if pw, err = promptPassword(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}
	if err := keyring.SetPassword(pw); err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Password stored in OS keyring"))
	ctx.Println("  Connection strings without a password will use it.")
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeletePassword(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no password found in keyring")
		}
		return err
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Password deleted from OS keyring"))
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println(cli.ErrorStyle.Render("❌ OS keyring is not available on this system"))
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println(cli.SuccessStyle.Render("✓ OS keyring is available"))
	if _, err := keyring.GetPassword(); err == nil {
		ctx.Println(cli.SuccessStyle.Render("✓ Password is stored in keyring"))
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println(cli.MutedStyle.Render("ℹ No password stored in keyring"))
	}
	return nil
}
