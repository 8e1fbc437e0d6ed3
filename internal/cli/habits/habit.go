package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/diarykeep/internal/app"
	"github.com/julianstephens/diarykeep/internal/cli"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/models"
)

// resolve finds a habit by ID or, failing that, by case-insensitive name.
func resolve(a *app.App, ref string) (models.Habit, error) {
	if h, err := a.Habits.Get(ref); err == nil {
		return h, nil
	}
	for _, h := range a.Habits.List() {
		if strings.EqualFold(h.Name, strings.TrimSpace(ref)) {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("%w: habit %q", apperrors.ErrNotFound, ref)
}

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Create a habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with today's state." default:"1"`
	Edit   HabitEditCmd   `cmd:"" help:"Rename or restyle a habit."`
	Rm     HabitRemoveCmd `cmd:"" help:"Delete a habit."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark a habit done or not done for a day."`
	Stats  HabitStatsCmd  `cmd:"" help:"Show completion counts for a habit."`
}

type HabitAddCmd struct {
	Name string `arg:"" help:"Habit name."`
	Icon string `help:"Emoji icon."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	h, err := a.Habits.Add(c.Name, c.Icon)
	if err != nil {
		return err
	}
	ctx.Printf("Added habit: %s %s (ID: %s)\n", h.Icon, h.Name, h.ID)
	return nil
}

type HabitListCmd struct {
	Date string `arg:"" optional:"" help:"Day to show completion for. Defaults to today."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	list := a.Habits.List()
	if len(list) == 0 {
		ctx.Println("No habits yet. Add one with 'diarykeep habit add'.")
		return nil
	}
	done := 0
	for _, h := range list {
		mark := "□"
		if a.Habits.Done(h.ID, key) {
			mark = cli.SuccessStyle.Render("✓")
			done++
		}
		ctx.Printf("%s %s %-24s %s\n", mark, h.Icon, h.Name, cli.MutedStyle.Render(h.ID))
	}
	ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("%s: %d/%d done", key, done, len(list))))
	return nil
}

type HabitEditCmd struct {
	Habit string  `arg:"" help:"Habit ID or name."`
	Name  *string `help:"New name."`
	Icon  *string `help:"New icon."`
	Color *string `help:"New hex color."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	h, err := resolve(a, c.Habit)
	if err != nil {
		return err
	}
	h, err = a.Habits.Update(h.ID, models.HabitPatch{Name: c.Name, Icon: c.Icon, Color: c.Color})
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s %s\n", h.Icon, h.Name)
	return nil
}

type HabitRemoveCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitRemoveCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	h, err := resolve(a, c.Habit)
	if err != nil {
		return err
	}
	if err := a.Habits.Delete(h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Date  string `arg:"" optional:"" help:"Day to toggle. Defaults to today."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	h, err := resolve(a, c.Habit)
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	done, err := a.Habits.Toggle(ctx.Background(), h.ID, key)
	if err != nil {
		return err
	}
	if done {
		ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %s done on %s", h.Name, key)))
	} else {
		ctx.Printf("□ %s not done on %s\n", h.Name, key)
	}
	return nil
}

type HabitStatsCmd struct {
	Habit string `arg:"" optional:"" help:"Habit ID or name. All habits when omitted."`
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	list := a.Habits.List()
	if c.Habit != "" {
		h, err := resolve(a, c.Habit)
		if err != nil {
			return err
		}
		list = []models.Habit{h}
	}
	now := a.Now()
	for _, h := range list {
		s := a.Habits.Stats(h.ID, now)
		ctx.Println(cli.HeadingStyle.Render(h.Icon + " " + h.Name))
		ctx.Printf("  Streak:       %d days\n", s.Streak)
		ctx.Printf("  Last 7 days:  %d\n", s.Last7Days)
		ctx.Printf("  Last 30 days: %d\n", s.Last30Days)
		ctx.Printf("  Total:        %d\n", s.TotalCompleted)
	}
	p := a.Habits.TodayProgress(now)
	ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("Today: %d/%d (%d%%)", p.Completed, p.Total, p.Percentage)))
	return nil
}
