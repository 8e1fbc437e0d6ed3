package entries

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/stats"
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

type WriteCmd struct {
	Date   string   `arg:"" help:"Day to write (YYYY-MM-DD, today, yesterday)."`
	Text   []string `arg:"" optional:"" help:"Entry text. Read from stdin when omitted or '-'."`
	Append bool     `short:"a" help:"Append to the existing entry instead of replacing it."`
}

func (c *WriteCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	text := strings.Join(c.Text, " ")
	if text == "" || text == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimRight(string(b), "\n")
	}
	if c.Append {
		if existing := a.Diary.GetDay(key).Content; existing != "" {
			text = existing + "\n" + text
		}
	}

	if err := a.AutoSaver().Save(ctx.Background(), key, text); err != nil {
		return fmt.Errorf("entry for %s kept for retry by 'diarykeep watch': %w", key, err)
	}
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Saved %s (%d words)", key, stats.CountWords(text))))
	return nil
}

type ShowCmd struct {
	Date string `arg:"" optional:"" help:"Day to show. Defaults to today."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	rec := a.Diary.GetDay(key)

	header := key
	if a.Prefs.IsBookmarked(key) {
		header += " ★"
	}
	ctx.Println(cli.DateStyle.Render(header))

	if rec.IsEmpty() && rec.Location == nil && rec.Weather == nil && rec.Mood == "" && len(rec.Tags) == 0 {
		ctx.Println(cli.MutedStyle.Render("Nothing written for this day."))
		return nil
	}
	printMeta(ctx, rec)
	if rec.Content != "" {
		ctx.Println()
		ctx.Println(rec.Content)
	}
	if len(rec.Photos) > 0 {
		ctx.Println()
		ctx.Println(cli.HeadingStyle.Render(fmt.Sprintf("Photos (%d)", len(rec.Photos))))
		for _, p := range rec.Photos {
			ctx.Printf("  %s\n", p.Filename)
		}
	}
	if len(rec.VoiceNotes) > 0 {
		ctx.Println()
		ctx.Println(cli.HeadingStyle.Render(fmt.Sprintf("Voice notes (%d)", len(rec.VoiceNotes))))
		for _, v := range rec.VoiceNotes {
			ctx.Printf("  %s  %s\n", v.Filename, formatDuration(v.Duration))
		}
	}

	if habits := a.Habits.List(); len(habits) > 0 {
		p := stats.DayProgress(rec, habits)
		ctx.Println()
		ctx.Println(cli.HeadingStyle.Render(fmt.Sprintf("Habits %d/%d", p.Completed, p.Total)))
		for _, h := range habits {
			mark := "□"
			if rec.Habits[h.ID] {
				mark = "✓"
			}
			ctx.Printf("  %s %s %s\n", mark, h.Icon, h.Name)
		}
	}
	return nil
}

func printMeta(ctx *cli.Context, rec models.DayRecord) {
	if rec.Mood != "" {
		ctx.Printf("Mood:     %s\n", rec.Mood)
	}
	if len(rec.Tags) > 0 {
		ctx.Printf("Tags:     #%s\n", strings.Join(rec.Tags, " #"))
	}
	if rec.Location != nil {
		ctx.Printf("Location: %s\n", rec.Location.Name)
	}
	if rec.Weather != nil {
		ctx.Printf("Weather:  %s %s %.0f°\n", rec.Weather.Icon, rec.Weather.Condition, rec.Weather.Temp)
	}
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

type DeleteCmd struct {
	Date string `arg:"" help:"Day to delete."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete everything written on %s?", key))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}
	if err := a.Diary.DeleteDay(ctx.Background(), key); err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Deleted " + key))
	return nil
}

type TaskAddCmd struct {
	Date string   `arg:"" help:"Day the task belongs to."`
	Text []string `arg:"" help:"Task text."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(c.Text, " "))
	if text == "" {
		return fmt.Errorf("task text cannot be empty")
	}
	if err := a.Diary.AddTask(ctx.Background(), key, text); err != nil {
		return err
	}
	ctx.Printf("Added task to %s: %s\n", key, text)
	return nil
}

type TaskToggleCmd struct {
	Date string `arg:"" help:"Day the task belongs to."`
	Line int    `arg:"" help:"Zero-based line number of the task in the entry."`
}

func (c *TaskToggleCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if err := a.Diary.ToggleTask(ctx.Background(), key, c.Line); err != nil {
		return err
	}
	ctx.Println(strings.Split(a.Diary.GetDay(key).Content, "\n")[c.Line])
	return nil
}

type TaskListCmd struct {
	Date string `arg:"" optional:"" help:"Day to list. Defaults to today."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	content := a.Diary.GetDay(key).Content
	found := 0
	for i, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, constants.TaskUnchecked) || strings.HasPrefix(line, constants.TaskChecked) {
			ctx.Printf("%3d  %s\n", i, line)
			found++
		}
	}
	if found == 0 {
		ctx.Println(cli.MutedStyle.Render("No tasks for " + key + "."))
		return nil
	}
	tc := stats.CountTasks(content)
	ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("%d/%d done", tc.Completed, tc.Total)))
	return nil
}
