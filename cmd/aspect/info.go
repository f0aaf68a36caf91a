package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"aspect/internal/metadata"

	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command
func NewInfoCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show details of an image",
		Long:  `Show the size, pixel dimensions, content type and camera details of an image.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := metadata.Analyze(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Fprintln(out, primaryText(info.Name))
			row := func(label, value string) {
				if value != "" {
					fmt.Fprintf(out, "  %-12s %s\n", label+":", value)
				}
			}
			row("Path", info.Path)
			row("Size", info.HumanSize())
			row("Pixels", info.Dimensions())
			row("Type", info.ContentType)
			row("Format", info.Format)
			row("Modified", info.ModTime.Format("2006-01-02 15:04:05"))

			keys := make([]string, 0, len(info.Metadata))
			for k := range info.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				row(k, info.Metadata[k])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
