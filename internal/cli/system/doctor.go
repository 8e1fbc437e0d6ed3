package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/julianstephens/diarykeep/internal/app"
	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/keyring"
	"github.com/julianstephens/diarykeep/internal/migration"
	"github.com/julianstephens/diarykeep/internal/storage/sqlite"
	"github.com/julianstephens/diarykeep/migrations"
)

type DoctorCmd struct{}

type check struct {
	name string
	// warn checks report but never fail the run.
	warn bool
	run  func(*cli.Context, *app.App) error
}

var checks = []check{
	{name: "Schema version", run: checkSchema},
	{name: "Diary partition", run: checkPartition(constants.PartitionDiary)},
	{name: "Habits partition", run: checkPartition(constants.PartitionHabits)},
	{name: "Settings partition", run: checkPartition(constants.PartitionSettings)},
	{name: "Photo blobs", warn: true, run: checkPhotoBlobs},
	{name: "Backups present", warn: true, run: checkBackups},
	{name: "Native host", warn: true, run: checkHost},
	{name: "Keyring", warn: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println(cli.HeadingStyle.Render("Running diagnostics..."))
	ctx.Println()

	hasError := false

	if err := checkTimezone(ctx); err != nil {
		fail(ctx, "Clock/timezone", err)
		hasError = true
	} else {
		ok(ctx, "Clock/timezone")
	}

	a, err := ctx.App()
	if err != nil {
		fail(ctx, "Storage reachable", err)
		for _, c := range checks {
			ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("⊘ %s: SKIPPED (storage not reachable)", c.name)))
		}
		ctx.Println()
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ok(ctx, "Storage reachable")

	for _, c := range checks {
		err := c.run(ctx, a)
		switch {
		case err == nil:
			ok(ctx, c.name)
		case c.warn:
			ctx.Println(cli.WarnStyle.Render(fmt.Sprintf("⚠ %s: WARNING", c.name)))
			ctx.Printf("   %v\n", err)
		default:
			fail(ctx, c.name, err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println(cli.SuccessStyle.Render("All diagnostics passed!"))
	return nil
}

func ok(ctx *cli.Context, name string) {
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %s: OK", name)))
}

func fail(ctx *cli.Context, name string, err error) {
	ctx.Println(cli.ErrorStyle.Render(fmt.Sprintf("❌ %s: FAIL", name)))
	ctx.Printf("   Error: %v\n", err)
}

func checkTimezone(ctx *cli.Context) error {
	if tz := ctx.Config.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
	}
	if time.Now().Year() < 2020 {
		return errors.New("system clock looks wrong")
	}
	return nil
}

func checkSchema(ctx *cli.Context, a *app.App) error {
	store, isSQLite := a.Provider.(*sqlite.Store)
	if !isSQLite {
		return nil
	}
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	runner := migration.NewRunner(store.GetDB(), sub, migration.SQLite)
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d", current, latest)
	}
	return nil
}

func checkPartition(key string) func(*cli.Context, *app.App) error {
	return func(ctx *cli.Context, a *app.App) error {
		raw, found, err := a.Provider.GetPartition(key)
		if err != nil {
			return err
		}
		if found && !json.Valid([]byte(raw)) {
			return fmt.Errorf("%s is not valid JSON; defaults are in use until it is overwritten", key)
		}
		return nil
	}
}

func checkPhotoBlobs(ctx *cli.Context, a *app.App) error {
	missing := 0
	for _, p := range a.Diary.AllPhotos() {
		if _, found := a.Diary.PhotoData(ctx.Background(), p.PhotoRef); !found {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%d photo(s) have no stored data", missing)
	}
	return nil
}

func checkBackups(ctx *cli.Context, a *app.App) error {
	list, err := a.Archives.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(list) == 0 {
		return errors.New("no backups found - consider creating one with 'diarykeep backup export'")
	}
	return nil
}

func checkHost(ctx *cli.Context, a *app.App) error {
	if a.Host == nil {
		return errors.New("no native host running; widget sync and mirroring are off")
	}
	return nil
}

func checkKeyring(ctx *cli.Context, a *app.App) error {
	if a.Provider.WatchPath() != "" {
		return nil
	}
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}
