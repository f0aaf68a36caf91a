package main

import (
	"encoding/json"
	"fmt"
	"time"

	"aspect/internal/catalog"
	"aspect/internal/data"
	"aspect/internal/event"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type listEntry struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Rating   int       `json:"rating,omitempty"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		sortName  string
		nameQuery string
		minRating string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "List the images of a directory",
		Long: `List the images of a directory in viewer order, applying the same
sort and filter the viewer would.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			var events []event.Event
			if sortName != "" {
				method, err := data.ParseFileSort(sortName)
				if err != nil {
					return err
				}
				events = append(events, event.SortBy{Method: method})
			}
			if nameQuery != "" {
				events = append(events, event.FilterText{Text: nameQuery})
			}
			if minRating != "" {
				r, err := data.ParseRating(minRating)
				if err != nil {
					return err
				}
				events = append(events, event.FilterRating{Rating: r})
			}

			cat, err := catalog.FromDir(dir, catalogOptions()...)
			if err != nil {
				return err
			}
			defer cat.Close()

			// Same path the viewer takes: one frame of events.
			bus := event.NewBus()
			bus.PushAll(events)
			bus.Rotate()
			cat.Update(bus)

			files := cat.Files()
			if asJSON {
				entries := make([]listEntry, 0, len(files))
				for _, f := range files {
					v, _ := f.Rating.Value()
					entries = append(entries, listEntry{
						Path:     f.Path,
						Name:     f.Name(),
						Rating:   v,
						Size:     f.Size(),
						Modified: f.LastModified(),
					})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, primaryText(fmt.Sprintf("%s (%d of %d, sorted by %s)",
				cat.Dir(), cat.Len(), cat.Total(), cat.Sort())))
			for _, f := range files {
				stars := ""
				if f.Rating.IsSet() {
					stars = ratingStyle.Render(f.Rating.Stars())
				}
				fmt.Fprintf(out, "  %-40s %10s  %s\n", f.Name(), humanize.Bytes(uint64(f.Size())), stars)
			}
			if !cat.HasPersistence() {
				fmt.Fprintln(out, infoText("ratings unavailable"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortName, "sort", "s", "", "sort by name, last_modified or random")
	cmd.Flags().StringVarP(&nameQuery, "filter", "f", "", "only names containing this text")
	cmd.Flags().StringVarP(&minRating, "min-rating", "r", "", "only images rated at least this (1-5)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
