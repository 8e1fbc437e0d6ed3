package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/diarykeep/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initialising."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.Provider.WatchPath() != "" {
		dbPath := ctx.Provider.WatchPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Provider.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Println(cli.WarnStyle.Render("Deleted existing database at: " + dbPath))
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Provider.Init(); err != nil {
		return err
	}
	if err := os.MkdirAll(ctx.ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Initialized diarykeep storage at: " + ctx.Provider.GetConfigPath()))
	return nil
}
