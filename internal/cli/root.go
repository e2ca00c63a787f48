// Package cli wires the harness commands: schema migrations, dataset
// seeding and environment checks.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ammerola/api-framework/internal/adapters/apiclient"
	"github.com/ammerola/api-framework/internal/adapters/cache"
	"github.com/ammerola/api-framework/internal/adapters/db"
	"github.com/ammerola/api-framework/internal/adapters/storage"
	"github.com/ammerola/api-framework/internal/core/ports"
	"github.com/ammerola/api-framework/internal/pkg/config"
	"github.com/ammerola/api-framework/internal/pkg/logger"
)

// Options lets callers replace the outputs and the adapter factories.
// Zero values fall back to stdout/stderr and the real adapters.
type Options struct {
	Out            io.Writer
	Err            io.Writer
	OpenDatabase   func(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.Database, error)
	NewAPIClient   func(cfg *config.Config, baseURL string, log *slog.Logger) (ports.APIClient, error)
	NewReportStore func(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.ReportStore, error)
}

const skipSetup = "skip-setup"

type app struct {
	opts Options
	cfg  *config.Config
	log  *logger.Logger

	// opened on first use by the default API client factory
	cache ports.Cache

	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.OpenDatabase == nil {
		opts.OpenDatabase = openDatabase
	}
	if opts.NewReportStore == nil {
		opts.NewReportStore = newReportStore
	}

	a := &app{opts: opts}
	if a.opts.NewAPIClient == nil {
		a.opts.NewAPIClient = a.newAPIClient
	}

	root := &cobra.Command{
		Use:   "harness",
		Short: "API and database test harness",
		Long: `harness prepares and checks the environment the end-to-end suites run against.

It applies the people schema, loads the embedded dataset and verifies that the
database and the REST services under test are reachable.

Configuration comes from the environment (DB_HOST, DB_NAME, API_BASE_URL, ...),
an optional .env file in development and an optional config file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("HARNESS_CONFIG"), "Path to a config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Override the configured log format (json|text)")

	root.AddCommand(
		a.newMigrateCommand(),
		a.newSeedCommand(),
		a.newCheckCommand(),
		a.newCacheCommand(),
		newVersionCommand(),
	)

	return root
}

// Execute runs the harness with process defaults.
func Execute(ctx context.Context) error {
	return NewRootCommand(Options{}).ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	bootstrap := logger.SetupLogger("info", "text")
	cfg, err := config.LoadFile(bootstrap.Logger, a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.App.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.App.LogFormat = a.logFormat
	}

	a.cfg = cfg
	a.log = logger.NewWithWriter(&logger.LogConfig{
		Level:          cfg.App.LogLevel,
		Format:         cfg.App.LogFormat,
		Environment:    cfg.App.Environment,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Files:          cfg.App.LogFiles,
	}, a.opts.Err)

	ctx := logger.WithCommand(cmd.Context(), cmd.CommandPath())
	cmd.SetContext(ctx)

	a.log.DebugContext(ctx, "configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("db_host", cfg.Database.Host),
		slog.String("api_base_url", cfg.API.BaseURL),
	)
	return nil
}

func (a *app) database(ctx context.Context) (ports.Database, error) {
	database, err := a.opts.OpenDatabase(ctx, a.cfg, a.log.Logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return database, nil
}

func (a *app) closeDatabase(ctx context.Context, database ports.Database) {
	if err := database.Close(); err != nil {
		a.log.WarnContext(ctx, "failed to close database", slog.String("error", err.Error()))
	}
}

func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.Database, error) {
	if err := resolvePassword(ctx, cfg, log); err != nil {
		return nil, err
	}
	database, err := db.NewDatabase(ctx, cfg.DBConfig(), log)
	if err != nil {
		return nil, err
	}
	return database, nil
}

func resolvePassword(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	sm, err := cfg.NewSecretsManager(ctx, log)
	if err != nil {
		return err
	}
	return cfg.ResolveDatabasePassword(ctx, sm)
}

func (a *app) newAPIClient(cfg *config.Config, baseURL string, log *slog.Logger) (ports.APIClient, error) {
	opts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		apiclient.WithUserAgent(cfg.API.UserAgent),
		apiclient.WithLogger(log),
	}

	if cfg.Redis.URL != "" {
		c, err := a.responseCache(log)
		if err != nil {
			return nil, err
		}
		opts = append(opts, apiclient.WithCache(c, cfg.Redis.CacheTTL))
	}

	client, err := apiclient.New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *app) responseCache(log *slog.Logger) (ports.Cache, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	if a.cfg.Redis.URL == "" {
		return nil, errRedisNotConfigured
	}

	client, err := cache.NewClient(a.cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	a.cache = cache.NewCache(client, a.cfg.Redis.CacheTTL, log)
	return a.cache, nil
}

func (a *app) closeCache(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Close(); err != nil {
		a.log.WarnContext(ctx, "failed to close cache", slog.String("error", err.Error()))
	}
	a.cache = nil
}

func newReportStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.ReportStore, error) {
	store, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.Reports.Bucket,
		Prefix:          cfg.Reports.Prefix,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.Reports.Endpoint,
		UsePathStyle:    cfg.Reports.UsePathStyle,
	}, log)
	if err != nil {
		return nil, err
	}
	return store, nil
}
