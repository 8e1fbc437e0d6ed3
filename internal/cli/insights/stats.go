package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/stats"
)

type StatsCmd struct {
	Daily bool `help:"Include words per day for the last 30 days."`
	JSON  bool `name:"json" help:"Print machine-readable JSON."`
}

type statsReport struct {
	Summary  stats.Summary         `json:"summary"`
	Weekdays [7]stats.WeekdayStats `json:"weekdays"`
	Monthly  []stats.MonthlyStats  `json:"monthly"`
	Daily    []stats.DailyStats    `json:"daily,omitempty"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	snap := a.Diary.GetAll()
	now := a.Now()

	r := statsReport{
		Summary:  stats.Summarize(snap, now),
		Weekdays: stats.Weekdays(snap),
		Monthly:  stats.Monthly(snap),
	}
	if c.Daily {
		r.Daily = stats.Daily(snap, now)
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	s := r.Summary
	ctx.Println(cli.HeadingStyle.Render("Summary"))
	ctx.Printf("  Entries:          %d\n", s.TotalEntries)
	ctx.Printf("  Words:            %d (avg %d)\n", s.TotalWords, s.AverageWordsPerEntry)
	ctx.Printf("  Photos:           %d\n", s.TotalPhotos)
	ctx.Printf("  Tasks:            %d/%d done\n", s.CompletedTasks, s.TotalTasks)
	ctx.Printf("  Current streak:   %d days\n", s.CurrentStreak)
	ctx.Printf("  Longest streak:   %d days\n", s.LongestStreak)

	ctx.Println()
	ctx.Println(cli.HeadingStyle.Render("By weekday"))
	for _, w := range r.Weekdays {
		ctx.Printf("  %s  %s %d\n", w.Day, bar(w.Entries, 1), w.Entries)
	}

	if len(r.Monthly) > 0 {
		ctx.Println()
		ctx.Println(cli.HeadingStyle.Render("By month"))
		for _, m := range r.Monthly {
			ctx.Printf("  %s  %3d entries  %6d words  %3d photos\n", m.Month, m.Entries, m.Words, m.Photos)
		}
	}

	if c.Daily {
		ctx.Println()
		ctx.Println(cli.HeadingStyle.Render("Last 30 days"))
		for _, d := range r.Daily {
			ctx.Printf("  %s  %s %d\n", d.Date, bar(d.WordCount, 25), d.WordCount)
		}
	}
	return nil
}

// bar draws one block per unit, capped at 40.
func bar(n, unit int) string {
	w := n / unit
	if n > 0 && w == 0 {
		w = 1
	}
	return strings.Repeat("█", min(w, 40))
}

type AchievementsCmd struct {
	All bool `help:"Show locked achievements too."`
}

func (c *AchievementsCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	list := stats.Achievements(a.Diary.GetAll(), a.Habits.Count(), a.Now())
	sum := stats.SummarizeAchievements(list)

	ctx.Println(cli.HeadingStyle.Render(fmt.Sprintf("Achievements %d/%d", sum.Unlocked, sum.Total)))
	groups := stats.ByCategory(list)
	for _, cat := range []stats.Category{stats.CategoryStarter, stats.CategoryStreak, stats.CategoryEntries, stats.CategoryPhotos, stats.CategoryHabits} {
		for _, ach := range groups[cat] {
			switch {
			case ach.Unlocked:
				ctx.Printf("  %s %s  %s\n", ach.Icon, cli.SuccessStyle.Render(ach.Name), cli.MutedStyle.Render(ach.Description))
			case c.All:
				ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("  🔒 %s  %d/%d", ach.Name, ach.Progress, ach.Requirement)))
			}
		}
	}
	if sum.Next != nil {
		ctx.Println()
		ctx.Printf("Next: %s %s (%d/%d)\n", sum.Next.Icon, sum.Next.Name, sum.Next.Progress, sum.Next.Requirement)
	}
	return nil
}
