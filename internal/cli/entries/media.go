package entries

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/diarykeep/internal/app"
	"github.com/julianstephens/diarykeep/internal/blob"
	"github.com/julianstephens/diarykeep/internal/cli"
	"github.com/julianstephens/diarykeep/internal/diary"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
)

// capture streams a file into c, cancelling on any read error so nothing is
// stored.
func capture(ctx *cli.Context, c *diary.Capture, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		c.Cancel()
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(c, f); err != nil {
		c.Cancel()
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if c.Len() == 0 {
		c.Cancel()
		return "", fmt.Errorf("%s is empty", path)
	}
	return c.Commit(ctx.Background())
}

type PhotoAddCmd struct {
	Date string `arg:"" help:"Day to attach the photo to."`
	File string `arg:"" type:"existingfile" help:"Image file (JPEG)."`
}

func (c *PhotoAddCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	name, err := capture(ctx, a.Diary.BeginPhoto(key), c.File)
	if err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Added %s to %s", name, key)))
	return nil
}

type PhotoRemoveCmd struct {
	Date     string `arg:"" help:"Day the photo belongs to."`
	Filename string `arg:"" help:"Photo filename."`
}

func (c *PhotoRemoveCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if err := a.Diary.DeletePhoto(ctx.Background(), key, c.Filename); err != nil {
		return err
	}
	ctx.Printf("Removed %s from %s\n", c.Filename, key)
	return nil
}

// PhotoListCmd lists every photo, newest first.
type PhotoListCmd struct {
	Date string `arg:"" optional:"" help:"Only list this day, with where each photo is stored."`
}

func (c *PhotoListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	if c.Date != "" {
		return c.listDay(ctx, a)
	}
	photos := a.Diary.AllPhotos()
	if len(photos) == 0 {
		ctx.Println("No photos yet.")
		return nil
	}
	for _, p := range photos {
		ctx.Printf("%s  %s\n", cli.DateStyle.Render(p.DateKey), p.Filename)
	}
	return nil
}

func (c *PhotoListCmd) listDay(ctx *cli.Context, a *app.App) error {
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	refs := a.Diary.GetDay(key).Photos
	if len(refs) == 0 {
		ctx.Printf("No photos for %s.\n", key)
		return nil
	}
	stored, err := a.Diary.Blobs().ListByDay(ctx.Background(), key)
	if err != nil {
		return fmt.Errorf("failed to list stored photos: %w", err)
	}
	sizes := make(map[string]int, len(stored))
	for _, b := range stored {
		sizes[b.Key] = base64.StdEncoding.DecodedLen(len(b.Base64))
	}

	ctx.Println(cli.DateStyle.Render(key))
	for _, ref := range refs {
		status := cli.ErrorStyle.Render("missing")
		if n, ok := sizes[ref.Filename]; ok {
			status = fmt.Sprintf("stored, %d KB", (n+1023)/1024)
		} else if ref.Base64 != "" {
			status = cli.WarnStyle.Render("inline")
		}
		ctx.Printf("  %s  %s\n", ref.Filename, cli.MutedStyle.Render(status))
	}
	return nil
}

// PhotoSaveCmd writes a stored photo to a file.
type PhotoSaveCmd struct {
	Date     string `arg:"" help:"Day the photo belongs to."`
	Filename string `arg:"" help:"Photo filename."`
	Dest     string `arg:"" type:"path" help:"Output file."`
}

func (c *PhotoSaveCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	for _, ref := range a.Diary.GetDay(key).Photos {
		if ref.Filename != c.Filename {
			continue
		}
		data, found := a.Diary.PhotoData(ctx.Background(), ref)
		if !found {
			return fmt.Errorf("%w: no data stored for %s", apperrors.ErrNotFound, c.Filename)
		}
		raw, err := blob.Decode(data)
		if err != nil {
			return fmt.Errorf("stored photo is corrupt: %w", err)
		}
		if err := os.WriteFile(c.Dest, raw, 0644); err != nil {
			return err
		}
		ctx.Printf("Saved %s to %s\n", c.Filename, c.Dest)
		return nil
	}
	return fmt.Errorf("%w: photo %s on %s", apperrors.ErrNotFound, c.Filename, key)
}

type VoiceAddCmd struct {
	Date     string `arg:"" help:"Day to attach the recording to."`
	File     string `arg:"" type:"existingfile" help:"Audio file (M4A)."`
	Duration int    `short:"d" help:"Length in seconds." default:"0"`
}

func (c *VoiceAddCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	cp := a.Diary.BeginVoiceNote(key)
	cp.SetDuration(c.Duration)
	name, err := capture(ctx, cp, c.File)
	if err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Added %s to %s", name, key)))
	return nil
}

type VoiceRemoveCmd struct {
	Date     string `arg:"" help:"Day the recording belongs to."`
	Filename string `arg:"" help:"Recording filename."`
}

func (c *VoiceRemoveCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if err := a.Diary.DeleteVoiceNote(ctx.Background(), key, c.Filename); err != nil {
		return err
	}
	ctx.Printf("Removed %s from %s\n", c.Filename, key)
	return nil
}

type VoiceListCmd struct{}

func (c *VoiceListCmd) Run(ctx *cli.Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	notes := a.Diary.AllVoiceNotes()
	if len(notes) == 0 {
		ctx.Println("No voice notes yet.")
		return nil
	}
	for _, v := range notes {
		ctx.Printf("%s  %s  %s\n", cli.DateStyle.Render(v.DateKey), v.Filename, formatDuration(v.Duration))
	}
	return nil
}
