package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gigboard/engine/internal/models"
	"github.com/gigboard/engine/internal/repository"
	"github.com/gigboard/engine/internal/services"
	"github.com/gigboard/engine/pkg/config"
	"github.com/gigboard/engine/pkg/database"
	"github.com/gigboard/engine/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the gigboard database schema",
	Long:          `Creates and upgrades the schema, provisions the superadmin and reports row counts. Reads the same environment as the API server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or upgrade the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations completed")
			return nil
		})
	},
}

var withSamples bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate, provision the superadmin and optionally add sample reference data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			cfg := config.Get()
			users := services.NewUserService(repository.NewUserRepository(db))
			root, generated, err := users.EnsureSuperadmin(ctx, cfg.SuperadminUsername, cfg.SuperadminPassword)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if generated != "" {
				fmt.Fprintf(out, "superadmin %q created with password %s\n", root.Username, generated)
			} else {
				fmt.Fprintf(out, "superadmin %q present\n", root.Username)
			}
			if !withSamples {
				return nil
			}
			n, err := seedReference(ctx, services.NewReferenceService(repository.NewReferenceRepository(db)))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "added %d sample reference rows\n", n)
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Ping the store and print row counts per table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
			start := time.Now()
			if err := database.Ping(ctx, db); err != nil {
				return fmt.Errorf("store unreachable: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "store reachable (%s)\n", time.Since(start).Round(time.Millisecond))

			counts, err := repository.CountRows(ctx, db)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TABLE\tROWS")
			for _, c := range counts {
				fmt.Fprintf(tw, "%s\t%s\n", c.Table, humanize.Comma(c.Rows))
			}
			return tw.Flush()
		})
	},
}

func sample(s string) *string { return &s }

// seedReference adds the sample customers and writers when both lists are empty.
func seedReference(ctx context.Context, refs services.ReferenceService) (int, error) {
	customers, err := refs.ListCustomers(ctx)
	if err != nil {
		return 0, err
	}
	writers, err := refs.ListWriters(ctx)
	if err != nil {
		return 0, err
	}
	if len(customers) > 0 || len(writers) > 0 {
		return 0, nil
	}

	added := 0
	for _, c := range []models.Customer{
		{Name: "Zhang San", Contact: sample("13800138001"), Company: sample("ABC Co.")},
		{Name: "Li Si", Contact: sample("13800138002"), Company: sample("XYZ Group")},
		{Name: "Wang Wu", Contact: sample("13800138003"), Company: sample("Innovate Tech")},
	} {
		if err := refs.AddCustomer(ctx, &c); err != nil {
			return added, err
		}
		added++
	}
	for _, w := range []models.Writer{
		{Name: "Xiao Ming", Specialty: sample("Technology articles"), Contact: sample("18900189001"), Rate: 50},
		{Name: "Xiao Hong", Specialty: sample("Business plans"), Contact: sample("18900189002"), Rate: 80},
		{Name: "Xiao Gang", Specialty: sample("Design"), Contact: sample("18900189003"), Rate: 60},
	} {
		if err := refs.AddWriter(ctx, &w); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func withDB(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Get()
	db, err := database.Open(ctx, database.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DatabaseURL,
		Verbose: cfg.IsDevelopment(),
		Logger:  logger.L(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.L().Warn("database close failed", zap.Error(err))
		}
	}()
	return fn(ctx, db)
}

func init() {
	seedCmd.Flags().BoolVar(&withSamples, "samples", false, "add sample customers and writers when none exist")
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	cfg := config.MustLoad()
	if _, err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
}
