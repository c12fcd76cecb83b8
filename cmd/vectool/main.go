package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vectool/vectool/ai"
	"github.com/vectool/vectool/internal/profile"
	"github.com/vectool/vectool/internal/version"
	"github.com/vectool/vectool/metrics"
	"github.com/vectool/vectool/service"
	"github.com/vectool/vectool/store"
	"github.com/vectool/vectool/store/db"
	"github.com/vectool/vectool/vecindex"
	"github.com/vectool/vectool/vecindex/memory"
	"github.com/vectool/vectool/vecindex/pgvector"
)

var rootCmd = &cobra.Command{
	Use:   "vectool",
	Short: `A semantic tool registry. Store, manage and retrieve tools with vector similarity search.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Try to load .env from the current directory (ignore error if it doesn't exist).
		_ = godotenv.Load()
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the relational schema and provision the vector collection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		slog.Info("migration complete", "driver", rt.profile.Driver)
		return nil
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed and index every tool that has no vector reference yet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), terminationSignals...)
		defer stop()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		if rt.profile.MetricsAddr != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", rt.metrics.Handler())
				if err := http.ListenAndServe(rt.profile.MetricsAddr, mux); err != nil {
					slog.Error("metrics listener stopped", "error", err)
				}
			}()
		}

		count, err := rt.service.Backfill(ctx)
		if err != nil {
			slog.Error("backfill aborted", "synced", count, "error", err)
			return err
		}

		slog.Info("backfill complete", "synced", count)
		return nil
	},
}

// runtime bundles the process-lifetime dependencies, constructed once at
// startup and injected into each operation.
type runtime struct {
	profile *profile.Profile
	store   *store.Store
	index   vecindex.Index
	service *service.ToolService
	metrics *metrics.Metrics

	closers []func() error
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			slog.Error("failed to close resource", "error", err)
		}
	}
}

func newRuntime(ctx context.Context) (*runtime, error) {
	instanceProfile := &profile.Profile{
		Mode:   viper.GetString("mode"),
		Driver: viper.GetString("driver"),
		DSN:    viper.GetString("dsn"),
	}
	instanceProfile.FromEnv()
	instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}

	rt := &runtime{profile: instanceProfile}

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		slog.Error("failed to create db driver", "error", err)
		return nil, err
	}
	rt.closers = append(rt.closers, dbDriver.Close)

	rt.store = store.New(dbDriver, instanceProfile)
	if err := rt.store.Migrate(ctx); err != nil {
		rt.Close()
		slog.Error("failed to migrate", "error", err)
		return nil, err
	}

	rt.index, err = newVectorIndex(instanceProfile)
	if err != nil {
		rt.Close()
		slog.Error("failed to create vector index", "error", err)
		return nil, err
	}
	if closer, ok := rt.index.(interface{ Close() error }); ok {
		rt.closers = append(rt.closers, closer.Close)
	}
	if err := rt.index.EnsureCollection(ctx); err != nil {
		rt.Close()
		slog.Error("failed to provision vector collection", "error", err)
		return nil, err
	}

	embedder, err := ai.NewEmbeddingService(ai.EmbeddingConfigFromProfile(instanceProfile))
	if err != nil {
		rt.Close()
		slog.Error("failed to create embedding service", "error", err)
		return nil, err
	}

	rt.metrics = metrics.New(metrics.DefaultConfig())
	rt.service = service.New(rt.store, embedder, rt.index, rt.metrics)

	return rt, nil
}

// newVectorIndex picks the vector index implementation for the profile.
// Postgres deployments use pgvector; sqlite deployments fall back to the
// in-process index, which only lives as long as the process does.
func newVectorIndex(p *profile.Profile) (vecindex.Index, error) {
	if p.Driver == "postgres" {
		return pgvector.Open(p.VectorDSN, p.VectorTable, p.EmbeddingDimensions)
	}
	slog.Warn("sqlite driver selected, using in-process vector index; embeddings are not persisted across restarts")
	return memory.New(), nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "postgres")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of process, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")

	if err := viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("driver", rootCmd.PersistentFlags().Lookup("driver")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("dsn", rootCmd.PersistentFlags().Lookup("dsn")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("vectool")
	viper.AutomaticEnv()

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backfillCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
