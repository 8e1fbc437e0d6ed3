package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/diarykeep/internal/app"
	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/cli/backups"
	"github.com/julianstephens/diarykeep/internal/cli/entries"
	"github.com/julianstephens/diarykeep/internal/cli/habits"
	"github.com/julianstephens/diarykeep/internal/cli/insights"
	"github.com/julianstephens/diarykeep/internal/cli/system"
	"github.com/julianstephens/diarykeep/internal/config"
	"github.com/julianstephens/diarykeep/internal/constants"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/logger"
)

var CLI struct {
	Version    kong.VersionFlag
	Config     string `help:"SQLite file path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use 'diarykeep keyring set', PGPASSWORD or .pgpass instead."`
	ConfigFile string `help:"Path to config.yaml." type:"path"`
	Debug      bool   `help:"Log to stderr at debug level."`

	Init   system.InitCmd   `cmd:"" help:"Initialize diarykeep storage."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`

	Write  entries.WriteCmd  `cmd:"" help:"Write a day's entry."`
	Show   entries.ShowCmd   `cmd:"" help:"Show a day." default:"withargs"`
	Delete entries.DeleteCmd `cmd:"" help:"Delete everything stored for a day."`
	Task   struct {
		Add    entries.TaskAddCmd    `cmd:"" help:"Append a task to a day."`
		Toggle entries.TaskToggleCmd `cmd:"" help:"Check or uncheck a task."`
		List   entries.TaskListCmd   `cmd:"" help:"List a day's tasks with their line numbers."`
	} `cmd:"" help:"Manage checklist tasks inside entries."`
	Photo struct {
		Add  entries.PhotoAddCmd    `cmd:"" help:"Attach a photo to a day."`
		Rm   entries.PhotoRemoveCmd `cmd:"" help:"Remove a photo."`
		List entries.PhotoListCmd   `cmd:"" help:"List all photos newest first, or one day with storage status."`
		Save entries.PhotoSaveCmd   `cmd:"" help:"Write a stored photo to a file."`
	} `cmd:"" help:"Manage photos."`
	Voice struct {
		Add  entries.VoiceAddCmd    `cmd:"" help:"Attach a voice recording to a day."`
		Rm   entries.VoiceRemoveCmd `cmd:"" help:"Remove a voice recording."`
		List entries.VoiceListCmd   `cmd:"" help:"List all voice recordings, newest first."`
	} `cmd:"" help:"Manage voice notes."`
	Meta     entries.MetaCmd   `cmd:"" help:"Set a day's tags, mood, location and weather."`
	Search   entries.SearchCmd `cmd:"" help:"Search entries."`
	Places   entries.PlacesCmd `cmd:"" help:"List recorded places."`
	Tags     entries.TagsCmd   `cmd:"" help:"List tags, or the days carrying one."`
	Bookmark struct {
		Toggle entries.BookmarkToggleCmd `cmd:"" help:"Bookmark or unbookmark a day."`
		List   entries.BookmarkListCmd   `cmd:"" help:"List bookmarked days." default:"1"`
	} `cmd:"" help:"Manage bookmarks."`

	Habit        habits.HabitCmd          `cmd:"" help:"Manage habits and habit tracking."`
	Stats        insights.StatsCmd        `cmd:"" help:"Show writing statistics."`
	Achievements insights.AchievementsCmd `cmd:"" help:"Show achievements."`

	Settings struct {
		Show system.SettingsShowCmd `cmd:"" help:"Show settings." default:"1"`
		Set  system.SettingsSetCmd  `cmd:"" help:"Change settings."`
	} `cmd:"" help:"Manage appearance settings."`
	Lock struct {
		Status    system.LockStatusCmd    `cmd:"" help:"Show whether the app lock is on." default:"1"`
		Set       system.LockSetCmd       `cmd:"" help:"Set or change the PIN."`
		Remove    system.LockRemoveCmd    `cmd:"" help:"Turn the app lock off."`
		Unlock    system.LockUnlockCmd    `cmd:"" help:"Check a PIN."`
		Biometric system.LockBiometricCmd `cmd:"" help:"Allow or forbid biometric unlock."`
	} `cmd:"" help:"Manage the app lock."`
	Notify struct {
		Show system.NotifyShowCmd `cmd:"" help:"Show the daily reminder." default:"1"`
		Set  system.NotifySetCmd  `cmd:"" help:"Change the daily reminder."`
		Test system.NotifyTestCmd `cmd:"" help:"Send the reminder now through the native host."`
	} `cmd:"" help:"Manage the daily reminder."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL password in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the PostgreSQL password from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage the database password in the OS keyring."`

	Backup struct {
		Export  backups.BackupExportCmd  `cmd:"" help:"Export the diary to a zip archive." default:"withargs"`
		Import  backups.BackupImportCmd  `cmd:"" help:"Import a zip archive."`
		List    backups.BackupListCmd    `cmd:"" help:"List stored backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore a stored backup."`
	} `cmd:"" help:"Export, import and restore archives."`
	Widget struct {
		Sync system.WidgetSyncCmd `cmd:"" help:"Push current data to the home-screen widgets."`
	} `cmd:"" help:"Manage home-screen widgets."`
	Watch system.WatchCmd `cmd:"" help:"Stay running: follow changes from other processes and keep widgets current."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("A private diary with photos, voice notes and habits"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	configDir, err := config.Dir()
	if err != nil {
		apperrors.Fatal(fmt.Errorf("failed to locate config directory: %w", err))
	}
	cfg, err := config.Load(CLI.ConfigFile)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Config != "" {
		cfg.Storage = config.ExpandHome(CLI.Config)
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	provider, err := app.NewProvider(cfg.Storage)
	if err != nil {
		apperrors.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	appCtx := cli.NewContext(ctx, cfg, configDir, provider)

	err = kctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("Failed to close storage", "error", cerr)
	}
	stop()
	apperrors.Fatal(err)
}
