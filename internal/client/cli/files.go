package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/client/client"
	"github.com/dmitrijs2005/taxvault/internal/filex"
)

var errBinaryToTerminal = errors.New("refusing to write binary data to a terminal")

func (a *App) upload(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: upload <path> [mime-type]", errUsage)
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	mimeType := blobstore.MimeTypeFromName(path)
	if len(args) == 2 {
		mimeType = args[1]
	}

	res, err := a.api.Upload(ctx, filepath.Base(path), mimeType, data)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s -> %s\n", res.FileName, res.FileURL)
	return nil
}

func (a *App) list(ctx context.Context) error {
	files, err := a.api.ListFiles(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSIZE\tUPLOADED\tURL")
	for _, f := range files {
		uploaded := "-"
		if !f.UploadDate.IsZero() {
			uploaded = f.UploadDate.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", f.OriginalName, f.FileType, f.OriginalSize, uploaded, f.URL)
	}
	return tw.Flush()
}

func (a *App) get(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: get <file-url> [dest|-]", errUsage)
	}

	d, err := a.api.Download(ctx, args[0])
	if err != nil {
		return err
	}

	dest := ""
	if len(args) == 2 {
		dest = args[1]
	}
	_, storedName := blobstore.ParseReference(args[0])
	return a.save(d, dest, blobstore.FallbackName(storedName))
}

// save writes a download to dest. An empty dest uses the server-provided
// name (or fallback); "-" writes to stdout unless it is a terminal.
func (a *App) save(d *client.Download, dest, fallback string) error {
	if dest == "-" {
		if a.stdoutIsTerminal() {
			return errBinaryToTerminal
		}
		_, err := a.out.Write(d.Data)
		return err
	}

	if dest == "" {
		dest = filepath.Base(d.Name)
		if d.Name == "" {
			dest = filepath.Base(fallback)
		}
	}

	if err := filex.WriteFileAtomic(dest, d.Data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", dest, len(d.Data))
	return nil
}
