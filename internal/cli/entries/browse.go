package entries

import (
	"sort"

	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/stats"
)

type SearchCmd struct {
	Query string `arg:"" help:"Text to look for, case-insensitive."`
}

func (c *SearchCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	results := stats.Search(a.Diary.GetAll(), c.Query)
	if len(results) == 0 {
		ctx.Println("No matches.")
		return nil
	}
	for _, r := range results {
		ctx.Printf("%s  %s\n", cli.DateStyle.Render(r.DateKey), r.Preview)
	}
	return nil
}

type PlacesCmd struct{}

func (c *PlacesCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	byName := stats.PlacesByName(a.Diary.GetAll())
	if len(byName) == 0 {
		ctx.Println("No places recorded.")
		return nil
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		visits := byName[n]
		ctx.Printf("%s (%d)\n", cli.HeadingStyle.Render(n), len(visits))
		for _, v := range visits {
			ctx.Printf("  %s\n", v.DateKey)
		}
	}
	return nil
}

type TagsCmd struct {
	Tag string `arg:"" optional:"" help:"List the days carrying this tag."`
}

func (c *TagsCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	snap := a.Diary.GetAll()
	if c.Tag != "" {
		days := stats.EntriesByTag(snap, c.Tag)
		if len(days) == 0 {
			ctx.Printf("No days tagged #%s.\n", c.Tag)
			return nil
		}
		for _, d := range days {
			ctx.Println(d)
		}
		return nil
	}
	counts := stats.TagCounts(snap)
	tags := stats.AllTags(snap)
	if len(tags) == 0 {
		ctx.Println("No tags yet.")
		return nil
	}
	for _, t := range tags {
		ctx.Printf("#%-20s %d\n", t, counts[t])
	}
	return nil
}

type BookmarkToggleCmd struct {
	Date string `arg:"" optional:"" help:"Day to bookmark. Defaults to today."`
}

func (c *BookmarkToggleCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	on, err := a.Prefs.ToggleBookmark(key)
	if err != nil {
		return err
	}
	if on {
		ctx.Printf("★ Bookmarked %s\n", key)
	} else {
		ctx.Printf("Removed bookmark from %s\n", key)
	}
	return nil
}

type BookmarkListCmd struct{}

func (c *BookmarkListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	keys := a.Prefs.Bookmarks()
	if len(keys) == 0 {
		ctx.Println("No bookmarks.")
		return nil
	}
	for _, k := range keys {
		preview := a.Diary.GetDay(k).Content
		if r := []rune(preview); len(r) > 60 {
			preview = string(r[:60]) + "..."
		}
		ctx.Printf("%s  %s\n", cli.DateStyle.Render(k), preview)
	}
	return nil
}
