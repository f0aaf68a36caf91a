package main

import (
	"io"

	"aspect/internal/catalog"
	"aspect/internal/config"
	"aspect/internal/log"
	"aspect/internal/tui"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	logFile string
	debug   bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aspect [path]",
		Short: "A terminal image viewer",
		Long: `Aspect shows the images of a directory in the terminal.

Pass an image to open its directory with that image selected, or a
directory to start at its first image. Ratings are stored next to the
images and can be used to filter the list.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfgFile != "" {
				cfg, err = config.LoadConfigFile(cfgFile)
			} else {
				cfg, err = config.LoadConfig()
			}
			if err != nil {
				cmd.PrintErrln(warningText("Warning: " + err.Error()))
				cfg = config.New()
			}
			if logFile != "" {
				cfg.Log.File = logFile
			}
			if debug {
				cfg.Log.Level = "debug"
			}

			// The viewer owns the terminal, so it only logs to a file.
			out := cmd.ErrOrStderr()
			if cmd.Name() == "aspect" {
				out = io.Discard
			}
			configureLogging(out)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runViewer(path)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/aspect/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append log lines to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewInfoCmd())
	rootCmd.AddCommand(NewRateCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

func configureLogging(out io.Writer) {
	opts := []log.Option{log.WithOutput(out), log.WithLevel(cfg.Log.Level)}
	if cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFile(cfg.Log.File))
	}
	log.Configure(opts...)
	log.SetDebug(cfg.Log.Level == "debug")
}

// catalogOptions maps the configuration onto catalog options.
func catalogOptions() []catalog.Option {
	opts := []catalog.Option{
		catalog.WithSort(cfg.Sort()),
		catalog.WithDatabaseName(cfg.Catalog.DatabaseName),
	}
	if !cfg.Catalog.PersistRatings {
		opts = append(opts, catalog.WithoutPersistence())
	}
	return opts
}

func runViewer(path string) error {
	cat, err := catalog.FromArgs([]string{path}, catalogOptions()...)
	if err != nil {
		return err
	}

	log.LogWithFields(log.F("dir", cat.Dir()), log.F("files", cat.Len())).Info("Starting viewer")
	return tui.Run(cat, tui.Options{
		SlideshowInterval: cfg.SlideshowInterval(),
		Watch:             cfg.Catalog.Watch,
	})
}
