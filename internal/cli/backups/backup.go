package backups

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/diarykeep/internal/archive"
	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/constants"
)

type BackupExportCmd struct {
	Path string `arg:"" optional:"" type:"path" help:"Write the archive here instead of the backup directory."`
}

func (c *BackupExportCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if c.Path != "" {
		if err := a.Archives.ExportTo(ctx.Background(), c.Path); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		ctx.Println(cli.SuccessStyle.Render("✓ Exported to " + c.Path))
		return nil
	}
	path, err := a.Archives.Create(ctx.Background())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Backup created: " + filepath.Base(path)))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	list, err := a.Archives.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(list) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", a.Archives.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(list), constants.MaxBackups)
	for _, b := range list {
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), float64(b.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", a.Archives.Dir())
	return nil
}

type BackupImportCmd struct {
	File string `arg:"" type:"existingfile" help:"Archive to import."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupImportCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.Confirm("Days in the archive will replace the same days in your diary. Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}
	res, err := archive.ImportFile(ctx.Background(), c.File, a.Diary)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	printResult(ctx, res)
	return nil
}

type BackupRestoreCmd struct {
	Backup string `arg:"" help:"Path or filename of the backup to restore."`
	Yes    bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	path, err := locate(c.Backup, a.Archives.Dir())
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Println(cli.WarnStyle.Render("⚠️  Days in the backup will replace the same days in your diary."))
		ctx.Println("A backup of your current diary will be created first.")
		ctx.Printf("\nRestore from: %s\n", path)
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	res, safety, err := a.Archives.Restore(ctx.Background(), path)
	if safety != "" {
		ctx.Printf("Current diary saved to: %s\n", filepath.Base(safety))
	}
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	printResult(ctx, res)
	return nil
}

// locate resolves name as a path, then as a file in dir.
func locate(name, dir string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return filepath.Abs(name)
	}
	if !filepath.IsAbs(name) {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("backup file not found: tried %s and %s", name, dir)
}

func printResult(ctx *cli.Context, res archive.Result) {
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Imported %d day(s), %d photo(s), %d voice note(s)", len(res.Days), res.Photos, res.VoiceNotes)))
	if len(res.Partitions) > 0 {
		ctx.Printf("  Also restored: %v\n", res.Partitions)
	}
}
