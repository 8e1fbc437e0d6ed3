package system

import (
	"fmt"

	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/native"
)

type NotifyShowCmd struct{}

func (c *NotifyShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	n := a.Prefs.Notifications()
	ctx.Println(cli.HeadingStyle.Render("Daily Reminder:"))
	ctx.Printf("  Enabled:  %v\n", n.Enabled)
	ctx.Printf("  Time:     %s\n", n.Time)
	ctx.Printf("  Message:  %s\n", n.Message)
	if n.Enabled {
		if next, err := n.NextFire(a.Now()); err == nil {
			ctx.Printf("  Next:     %s\n", next.Format("2006-01-02 15:04"))
		}
	}
	return nil
}

type NotifySetCmd struct {
	Enabled *bool   `help:"Enable or disable the daily reminder."`
	Time    *string `help:"Reminder time (HH:MM)."`
	Message *string `help:"Reminder text."`
}

func (c *NotifySetCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	n := a.Prefs.Notifications()
	if c.Enabled == nil && c.Time == nil && c.Message == nil {
		ctx.Println("No changes specified.")
		return nil
	}
	if c.Enabled != nil {
		n.Enabled = *c.Enabled
	}
	if c.Time != nil {
		n.Time = *c.Time
	}
	if c.Message != nil {
		n.Message = *c.Message
	}
	if err := a.Prefs.SetNotifications(n); err != nil {
		return fmt.Errorf("failed to save notification settings: %w", err)
	}
	ctx.Println(cli.SuccessStyle.Render("Notification settings updated."))
	return nil
}

// NotifyTestCmd shows the reminder now through the native host.
type NotifyTestCmd struct{}

func (c *NotifyTestCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if a.Host == nil {
		return native.ErrHostNotRunning
	}
	if err := a.Host.Notify(ctx.Background(), a.Prefs.Notifications().Message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	ctx.Println(cli.SuccessStyle.Render("✓ Notification sent"))
	return nil
}
