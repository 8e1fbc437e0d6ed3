package system

import (
	"fmt"

	"github.com/julianstephens/diarykeep/internal/cli"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	s := a.Prefs.Settings()

	ctx.Println(cli.HeadingStyle.Render("Current Settings:"))
	ctx.Printf("  Font Family:        %s\n", s.FontFamily)
	if s.FontFamily == "custom" {
		ctx.Printf("  Custom Font:        %s (%s)\n", s.CustomFontName, s.CustomFontURL)
	}
	ctx.Printf("  Font Size:          %s\n", s.FontSize)
	ctx.Printf("  Theme Color:        %s (%s)\n", s.ThemeColor, s.ThemeHex())
	ctx.Printf("  Background Color:   %s\n", s.BackgroundColor)
	ctx.Printf("  Font Color:         %s\n", s.FontColor)
	ctx.Printf("  Writing Prompts:    %v\n", s.ShowWritingPrompts)
	ctx.Printf("  Calendar:           %v\n", s.ShowCalendar)
	return nil
}

type SettingsSetCmd struct {
	FontFamily       *string `help:"Font family (inter|delius|georgia|courier|custom)."`
	FontSize         *string `help:"Font size (small|medium|large)."`
	Theme            *string `help:"Theme color (red|blue|green|purple|orange|pink|custom)."`
	CustomThemeColor *string `help:"Hex color used with --theme=custom."`
	BackgroundColor  *string `help:"Background hex color."`
	FontColor        *string `help:"Font hex color."`
	CustomFontURL    *string `name:"custom-font-url" help:"URL of a custom font."`
	CustomFontName   *string `help:"Name of a custom font."`
	WritingPrompts   *bool   `help:"Show writing prompts."`
	Calendar         *bool   `help:"Show the month calendar."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	s := a.Prefs.Settings()

	updated := false
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}
	setString(&s.FontFamily, c.FontFamily)
	setString(&s.FontSize, c.FontSize)
	setString(&s.ThemeColor, c.Theme)
	setString(&s.CustomThemeColor, c.CustomThemeColor)
	setString(&s.BackgroundColor, c.BackgroundColor)
	setString(&s.FontColor, c.FontColor)
	setString(&s.CustomFontURL, c.CustomFontURL)
	setString(&s.CustomFontName, c.CustomFontName)
	if c.WritingPrompts != nil {
		s.ShowWritingPrompts = *c.WritingPrompts
		updated = true
	}
	if c.Calendar != nil {
		s.ShowCalendar = *c.Calendar
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use 'settings show' to view settings or flags to update them.")
		return nil
	}
	if err := a.Prefs.SetSettings(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println(cli.SuccessStyle.Render("Settings updated successfully."))
	return nil
}
