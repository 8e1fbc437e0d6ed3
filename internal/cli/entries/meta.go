package entries

import (
	"fmt"
	"strings"

	"github.com/julianstephens/diarykeep/internal/app"
	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/models"
)

// Collaborators; replaced in tests.
var (
	newLocationProvider = func() app.LocationProvider { return app.NewNominatim() }
	newWeatherProvider  = func() app.WeatherProvider { return app.NewOpenMeteo() }
)

type MetaCmd struct {
	Date string `arg:"" help:"Day to update."`

	Tags      []string `sep:"," help:"Replace the day's tags (comma separated)."`
	ClearTags bool     `help:"Remove all tags."`
	Mood      string   `help:"Mood (great|good|okay|bad|awful)."`

	Location      string   `help:"Location name."`
	Lat           *float64 `help:"Latitude for the location and weather lookup."`
	Lng           *float64 `help:"Longitude for the location and weather lookup."`
	Lookup        bool     `help:"Name the place and fetch current weather from --lat/--lng."`
	ClearLocation bool     `help:"Remove the location."`

	Weather      string   `help:"Weather condition (Sunny, Partly Cloudy, Cloudy, Rainy, Stormy, Snowy, Foggy, Windy)."`
	Temp         *float64 `help:"Temperature in °C for --weather."`
	ClearWeather bool     `help:"Remove the weather."`
}

func (c *MetaCmd) Validate() error {
	if (c.Lat == nil) != (c.Lng == nil) {
		return fmt.Errorf("--lat and --lng must be given together")
	}
	if c.Lookup && c.Lat == nil {
		return fmt.Errorf("--lookup needs --lat and --lng")
	}
	if c.Mood != "" && models.ParseMood(c.Mood) == "" {
		return fmt.Errorf("unknown mood %q", c.Mood)
	}
	if c.Weather != "" {
		if _, ok := manualWeather(c.Weather); !ok {
			return fmt.Errorf("unknown weather %q", c.Weather)
		}
	}
	return nil
}

func manualWeather(condition string) (models.Weather, bool) {
	for _, w := range app.ManualWeather {
		if strings.EqualFold(w.Condition, condition) {
			return w, true
		}
	}
	return models.Weather{}, false
}

func (c *MetaCmd) patch(ctx *cli.Context, now int64) (models.MetaPatch, bool) {
	var p models.MetaPatch
	changed := false

	switch {
	case c.ClearTags:
		empty := []string{}
		p.Tags = &empty
		changed = true
	case len(c.Tags) > 0:
		tags := c.Tags
		p.Tags = &tags
		changed = true
	}

	if c.Mood != "" {
		m := models.ParseMood(c.Mood)
		p.Mood = &m
		changed = true
	}

	switch {
	case c.ClearLocation:
		p.ClearLocation = true
		changed = true
	case c.Lookup:
		if loc := app.FetchLocation(ctx.Background(), newLocationProvider(), *c.Lat, *c.Lng); loc != nil {
			if c.Location != "" {
				loc.Name = c.Location
			}
			p.Location = loc
			changed = true
		} else {
			ctx.Println(cli.WarnStyle.Render("⚠ Location lookup failed"))
		}
	case c.Location != "" || c.Lat != nil:
		loc := &models.Location{Name: strings.TrimSpace(c.Location), Lat: c.Lat, Lng: c.Lng, CreatedAt: now}
		if loc.Name == "" {
			loc.Name = fmt.Sprintf("%.4f, %.4f", *c.Lat, *c.Lng)
		}
		p.Location = loc
		changed = true
	}

	switch {
	case c.ClearWeather:
		p.ClearWeather = true
		changed = true
	case c.Weather != "":
		w, _ := manualWeather(c.Weather)
		if c.Temp != nil {
			w.Temp = *c.Temp
		}
		p.Weather = &w
		changed = true
	case c.Lookup:
		if w := app.FetchWeather(ctx.Background(), newWeatherProvider(), *c.Lat, *c.Lng); w != nil {
			p.Weather = w
			changed = true
		} else {
			ctx.Println(cli.WarnStyle.Render("⚠ Weather lookup failed"))
		}
	}
	return p, changed
}

func (c *MetaCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	p, changed := c.patch(ctx, a.Now().UnixMilli())
	if !changed {
		printMeta(ctx, a.Diary.GetDay(key))
		return nil
	}
	if err := a.Diary.WriteMeta(ctx.Background(), key, p); err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Updated " + key))
	printMeta(ctx, a.Diary.GetDay(key))
	return nil
}
