package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"CatalogSync/internal/app"
	"CatalogSync/internal/config"
	"CatalogSync/internal/logging"
)

const appName = "catalogsync"

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type globalFlags struct {
	configPath string
	profile    string
	logLevel   string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Publish the store catalog to the assistant knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML), defaults to $CATALOGSYNC_CONFIG")
	cmd.PersistentFlags().StringVarP(&flags.profile, "profile", "p", "", "Profile to run, defaults to $CATALOGSYNC_PROFILE or en")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		runCmd(flags),
		renderCmd(flags),
		scheduleCmd(flags),
		profilesCmd(flags),
		versionCmd(),
	)
	return cmd
}

func (f *globalFlags) load() config.Config {
	cfg := config.LoadFile(f.configPath)
	if f.profile != "" {
		cfg.Profile = f.profile
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	return cfg
}

func runCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fetch, format and republish the catalog once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.load()
			if err := cfg.Validate(true); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format))
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Run(ctx)
		},
	}
}

func renderCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the catalog document locally without publishing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.load()
			if err := cfg.Validate(false); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// reporters are never used when rendering
			cfg.Database.DSN = ""
			log := logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
			application, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer application.Close()

			if output == "" {
				output = application.Profile().Filename
			}

			// the file is only touched once the document is complete
			var buf bytes.Buffer
			summary, err := application.Render(ctx, &buf)
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := io.Copy(os.Stdout, &buf)
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			log.Info("document written", "path", output, "products", summary.Valid)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file, "-" for stdout (default: the profile filename)`)
	return cmd
}

func scheduleCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the sync on the configured cron expression until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.load()
			if err := cfg.Validate(true); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format))
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Schedule(ctx)
		},
	}
}

func profilesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configured profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.load()
			active, _ := cfg.ActiveProfile()

			out := cmd.OutOrStdout()
			for _, p := range cfg.Profiles {
				marker := " "
				if p.Name == active.Name {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-10s %-32s stock=%s require_stock=%t currency=%s\n",
					marker, p.Name, p.Filename, p.Stock.Mode, p.RequireStock, p.Currency)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}
