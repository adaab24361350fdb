package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"
)

// Files lists the user's audio files.
func (a *App) Files(ctx context.Context) error {
	files, err := a.fileService.List(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tDESCRIPTION\tSTORED\tCREATED")
	for _, f := range files {
		stored := "no"
		if f.AudioData != "" {
			stored = "yes"
		}
		created := time.Unix(f.CreatedAt, 0).Format(time.DateTime)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Category, f.Description, stored, created)
	}
	return tw.Flush()
}

// AddFile creates a file record and optionally uploads a local file.
func (a *App) AddFile(ctx context.Context) error {
	description, err := getSimpleText(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Enter category", a.out)
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Path to audio file (empty to skip upload)", a.out)
	if err != nil {
		return err
	}

	f, err := a.fileService.Add(ctx, description, category, path)
	if err != nil {
		if f.ID != "" {
			fmt.Fprintf(a.out, "Created %s but the upload failed\n", f.ID)
		}
		return err
	}

	fmt.Fprintf(a.out, "Created %s\n", f.ID)
	return nil
}

func (a *App) RemoveFile(ctx context.Context, id string) error {
	if err := a.fileService.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s\n", id)
	return nil
}
