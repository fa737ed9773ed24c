package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kotlens/kotlens/internal/app"
	"github.com/kotlens/kotlens/internal/config"
	"github.com/kotlens/kotlens/pkg/digest"
	"github.com/kotlens/kotlens/pkg/kot"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/application.yaml"

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("Failed to load .env file: %v", err)
	}
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	if err := rootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func rootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "kotlens",
		Short:         "Article 36 overtime and leave compliance dashboard for King of Time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the YAML configuration")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the weekly digest scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApplication(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run(ctx)
		},
	}

	var dryRun bool
	var month string
	report := &cobra.Command{
		Use:   "report",
		Short: "Send the compliance digest once, or print it with --dry-run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, deps, err := app.Bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer deps.Close()
			if pool != nil {
				defer pool.Close()
			}

			if !dryRun {
				run, err := deps.DigestService.SendReport(ctx)
				if err != nil {
					return err
				}
				log.Infof("Digest %s for %s: %s to %v", run.Id, run.Period, run.Status, run.Recipients)
				return nil
			}

			p := deps.AnalysisService.CurrentPeriod()
			if month != "" {
				if p, err = kot.ParseMonth(month); err != nil {
					return err
				}
			}
			analysisReport, err := deps.AnalysisService.Analyze(ctx, p)
			if err != nil {
				return err
			}
			html, err := deps.DigestRenderer.Render(digest.Build(analysisReport, deps.Clock.Now()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		},
	}
	report.Flags().BoolVar(&dryRun, "dry-run", false, "Print the digest HTML instead of mailing it")
	report.Flags().StringVar(&month, "month", "", "Month to render with --dry-run (YYYY-MM), the current month by default")

	root.AddCommand(serve, report)
	return root
}
