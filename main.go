// Package main provides the entry point of the dental clinic API
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/config"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "clinic",
	Short:         "Dental clinic site backend",
	Long:          `Serves the clinic website API: campaign attribution, consultation leads, CRM dashboard and site content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin, the CRM user, default settings and default content",
	RunE:  runSeed,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash of a password (prompts when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHashPassword,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clinic %s (built %s)\n", version, buildTime)
	},
}

var hashCost int

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost+2, "bcrypt cost")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flush, err := initializeSentry(cfg.Sentry)
	if err != nil {
		return err
	}
	defer flush()

	app, err := initializeApplication(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	app.router.SetupRoutes()
	if app.scheduler != nil {
		app.scheduler.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.router.Start(cfg.Server.Address())
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case sig := <-sigChan:
		app.log.Info("Shutting down gracefully", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if app.scheduler != nil {
		app.scheduler.Stop(shutdownCtx)
	}
	if err := app.router.Shutdown(shutdownCtx); err != nil {
		app.log.Error("Error during shutdown", "error", err)
	}
	app.log.Info("Server stopped")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := initializeLogger(cfg.Logging)

	db, err := initializeDatabase(cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	if err := migrate(db, log); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	report, err := businessflow.NewSeedFlow(db, seedConfig(cfg), log).Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "admin created: %t\n", report.AdminCreated)
	fmt.Fprintf(out, "crm user created: %t\n", report.CRMUserCreated)
	fmt.Fprintf(out, "settings inserted: %d\n", len(report.SettingsInserted))
	for collection, n := range report.ContentInserted {
		fmt.Fprintf(out, "%s inserted: %d\n", collection, n)
	}
	return nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	password := ""
	if len(args) == 1 {
		password = args[0]
	} else {
		var err error
		password, err = promptPassword(cmd)
		if err != nil {
			return err
		}
	}

	hash, err := businessflow.HashPassword(password, hashCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

// initializeSentry enables error reporting when a DSN is configured. The
// returned function flushes buffered events.
func initializeSentry(cfg config.SentryConfig) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          version,
		AttachStacktrace: true,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}
