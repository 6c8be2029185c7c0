package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/safetynet/alerts/internal/config"
	"github.com/safetynet/alerts/internal/domain/seed"
	"github.com/safetynet/alerts/internal/platform/cache"
	"github.com/safetynet/alerts/internal/platform/db"
	"github.com/safetynet/alerts/internal/platform/metrics"
	"github.com/safetynet/alerts/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "alerts-server",
		Short: "SafetyNet Alerts emergency information service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := db.NewMigrator(pool, migrationsFS(cfg)).Up(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationsFS(cfg)).Status(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the JSON dataset into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				file = cfg.JSONSeedFile
			}
			logger := newLogger(cfg)
			res, err := loadSeed(logger.WithContext(cmd.Context()), newStores(pool), file, nil)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Println("Store is not empty, nothing loaded.")
				return nil
			}
			fmt.Printf("Loaded %d address(es), %d person(s), %d medical record(s).\n",
				res.Addresses, res.Persons, res.MedicalRecords)
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to a JSON dataset (defaults to JSON_SEED_FILE, then the bundled dataset)")
	return cmd
}

// connect loads and validates the configuration and opens the pool.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func migrationsFS(cfg *config.Config) fs.FS {
	if cfg.MigrationsDir != "" {
		return os.DirFS(cfg.MigrationsDir)
	}
	return migrations.FS
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func loadSeed(ctx context.Context, s *stores, file string, m *metrics.Metrics) (*seed.Result, error) {
	doc, err := seed.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return seed.NewLoader(s.addresses, s.persons, s.records, s.tx, m).Load(ctx, doc)
}

func runServer() error {
	bootLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		bootLogger.Fatal().Err(err).Msg("invalid config")
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	n, err := db.NewMigrator(pool, migrationsFS(cfg)).Up(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}
	if n > 0 {
		logger.Info().Int("applied", n).Msg("migrations applied")
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	var store cache.Store
	if redisClient != nil {
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient, cfg.AlertsCacheTTL)
		logger.Info().Dur("ttl", cfg.AlertsCacheTTL).Msg("alert cache enabled")
	}

	s := newStores(pool)
	m := metrics.New()

	if cfg.JSONSeedEnabled {
		if _, err := loadSeed(logger.WithContext(ctx), s, cfg.JSONSeedFile, m); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed store")
		}
	}

	e := newServer(cfg, logger, s, store, m)
	e.GET("/health/db", db.HealthHandler(pool, func() *db.PoolStats { return db.GetPoolStats(pool) }))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
