package main

import (
	"fmt"
	"os"
	"path/filepath"

	"aspect/internal/data"
	"aspect/internal/errors"
	"aspect/internal/persist"

	"github.com/spf13/cobra"
)

// NewRateCmd creates the rate command
func NewRateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate <file> <1-5|none>",
		Short: "Rate an image without opening the viewer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return errors.NewFileError("invalid file path", args[0], errors.InvalidPath, err)
			}
			if fi, err := os.Stat(path); err != nil || fi.IsDir() || !data.IsImageName(path) {
				return errors.NewFileError("not a supported image file", args[0], errors.NotAFile, err)
			}

			rating, err := data.ParseRating(args[1])
			if err != nil {
				return errors.NewInvalidInputError("invalid rating", err)
			}

			store, err := persist.OpenDir(filepath.Dir(path), persist.WithDatabaseName(cfg.Catalog.DatabaseName))
			if err != nil {
				return err
			}
			defer store.Close()

			file := data.NewFile(path)
			previous, err := store.Get(file.Name())
			if err != nil {
				return err
			}
			file.Rating = rating
			if err := store.SetRating(file); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			msg := file.Name() + " rating cleared"
			if rating.IsSet() {
				msg = fmt.Sprintf("%s rated %s", file.Name(), rating.Stars())
			}
			if previous.IsSet() && previous != rating {
				msg += fmt.Sprintf(" (was %s)", previous.Stars())
			}
			fmt.Fprintln(out, successText(msg))

			count, err := store.Count()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, infoText(fmt.Sprintf("%d rated in %s", count, store.Path())))
			return nil
		},
	}

	return cmd
}
