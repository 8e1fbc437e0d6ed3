package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/diarykeep/internal/app"
	"github.com/julianstephens/diarykeep/internal/config"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/storage"
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	HeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	DateStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
)

// Context is handed to every command's Run method.
type Context struct {
	Config    config.Config
	ConfigDir string
	Provider  storage.Provider
	Out       io.Writer

	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title string) (bool, error)

	ctx context.Context
	app *app.App
}

func NewContext(ctx context.Context, cfg config.Config, configDir string, provider storage.Provider) *Context {
	return &Context{
		Config:    cfg,
		ConfigDir: configDir,
		Provider:  provider,
		Out:       os.Stdout,
		Confirm:   confirm,
		ctx:       ctx,
	}
}

// Background returns the context commands run under.
func (c *Context) Background() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// App opens the application on first use. Storage must be initialised.
func (c *Context) App() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.Open(c.Background(), c.Config, c.ConfigDir, c.Provider)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// Close releases the app if it was opened, otherwise the bare provider.
func (c *Context) Close() error {
	if c.app != nil {
		err := c.app.Close()
		c.app = nil
		return err
	}
	return c.Provider.Close()
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// ResolveDate turns "", "today", "yesterday", "tomorrow" or YYYY-MM-DD into a
// date key in the configured timezone.
func (c *Context) ResolveDate(s string) (string, error) {
	now := time.Now().In(c.Config.Location())
	if c.app != nil {
		now = c.app.Now()
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return datekey.Format(now), nil
	case "yesterday":
		return datekey.Format(datekey.AddDays(now, -1)), nil
	case "tomorrow":
		return datekey.Format(datekey.AddDays(now, 1)), nil
	}
	if !datekey.Valid(s) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today or yesterday)", s)
	}
	return s, nil
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}
