package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/widget"
)

// WidgetSyncCmd pushes the current projection to the home-screen widgets.
type WidgetSyncCmd struct {
	Print bool `help:"Print the projection instead of only writing it."`
}

func (c *WidgetSyncCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if c.Print {
		snap, habits := a.WidgetSource()()
		p := widget.Project(snap, habits, a.Now())
		ctx.Printf("Entries: %d  Streak: %d  Words: %d\n", p.StatsEntries, p.StatsStreak, p.StatsWords)
		ctx.Printf("Habits:  %d/%d (%s)\n", p.HabitsCompleted, p.HabitsTotal, p.HabitsDate)
		if p.TodaySnippet != "" {
			ctx.Printf("Today:   %s\n", p.TodaySnippet)
		}
	}
	if a.Host == nil {
		ctx.Println(cli.MutedStyle.Render("No native host running; nothing to sync."))
		return nil
	}
	if err := a.Syncer().Sync(ctx.Background()); err != nil {
		return fmt.Errorf("widget sync failed: %w", err)
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Widgets updated"))
	return nil
}

// WatchCmd keeps the process alive, reacting to storage changes from other
// processes and keeping widgets current, until interrupted.
type WatchCmd struct {
	Verbose bool `short:"v" help:"Print log lines to the terminal."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if c.Verbose {
		logger.InitWriter(os.Stderr, ctx.Config.Debug)
	}

	saver := a.AutoSaver()
	if n := saver.Pending(); n > 0 {
		logger.Info("Retrying unsaved entries", "count", n)
	}
	ctx.Println(cli.MutedStyle.Render("Watching for changes. Press Ctrl+C to stop."))
	logger.Info("Watch started", "host", a.Host != nil)
	if err := a.Watch(ctx.Background(), saver); err != nil {
		return err
	}
	logger.Info("Watch stopped")
	return nil
}
