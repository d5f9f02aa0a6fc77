package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/cli/config"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/repository/postgres"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := repoCfg.Flags()
	flags = append(flags, &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Preview changes without applying",
		Destination: &dryRun,
	})

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes or the PostgreSQL schema",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Migrate configuration",
				"repository", repoCfg,
				"dryRun", dryRun)

			switch repoCfg.Backend() {
			case config.BackendFirestore:
				return migrateFirestore(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID(), dryRun)
			case config.BackendPostgres:
				return migratePostgres(ctx, repoCfg.PostgresDSN(), dryRun)
			case config.BackendMemory:
				logging.Default().Info("Memory backend needs no migration")
				return nil
			default:
				return goerr.Wrap(config.ErrInvalidConfig, "invalid repository backend",
					goerr.V("backend", repoCfg.Backend()))
			}
		},
	}
}

// defaultFirestoreDatabase is used when no database ID is configured
const defaultFirestoreDatabase = "(default)"

func migrateFirestore(ctx context.Context, projectID, databaseID string, dryRun bool) error {
	logger := logging.Default()

	if projectID == "" {
		return goerr.Wrap(config.ErrMissingRequired, "firestore-project-id is required",
			goerr.V(config.FlagKey, "firestore-project-id"))
	}
	if databaseID == "" {
		databaseID = defaultFirestoreDatabase
	}

	client, err := fireconf.New(ctx, projectID, databaseID, getIndexConfig(),
		fireconf.WithLogger(logger),
		fireconf.WithDryRun(dryRun),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
	} else {
		logger.Info("Applying migrations")
	}
	if err := client.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations completed", "dryRun", dryRun)
	return nil
}

func migratePostgres(ctx context.Context, dsn string, dryRun bool) error {
	logger := logging.Default()

	if dsn == "" {
		return goerr.Wrap(config.ErrMissingRequired, "postgres-dsn is required",
			goerr.V(config.FlagKey, "postgres-dsn"))
	}

	if dryRun {
		logger.Info("Dry run mode - schema to apply", "schema", postgres.Schema())
		return nil
	}

	if err := postgres.Migrate(ctx, dsn); err != nil {
		return goerr.Wrap(err, "failed to migrate postgres schema")
	}
	logger.Info("PostgreSQL schema applied successfully")
	return nil
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "tools",
				Indexes: []fireconf.Index{
					// ListPublished: Status ASC, CreatedAt DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "Status", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderDescending},
						},
					},
					// ListPending: Status ASC, CreatedAt ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "Status", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderAscending},
						},
					},
					// Vector search restricted to published tools
					{
						Fields: []fireconf.IndexField{
							{Path: "Status", Order: fireconf.OrderAscending},
							{
								Path: "Embedding",
								Vector: &fireconf.VectorConfig{
									Dimension: model.EmbeddingDimension,
								},
							},
						},
					},
				},
			},
			{
				Name: "saved_tools",
				Indexes: []fireconf.Index{
					// List: UserID ASC, CreatedAt DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "UserID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
