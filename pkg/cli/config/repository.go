package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
	"github.com/secmon-lab/toolforge/pkg/repository/firestore"
	"github.com/secmon-lab/toolforge/pkg/repository/memory"
	"github.com/secmon-lab/toolforge/pkg/repository/postgres"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend     string
	projectID   string
	databaseID  string
	postgresDSN string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore, postgres or memory)",
			Category:    "Repository",
			Value:       BackendFirestore,
			Sources:     cli.EnvVars("TOOLFORGE_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TOOLFORGE_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("TOOLFORGE_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL connection string with pgvector (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TOOLFORGE_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.Int("postgres_dsn.len", len(r.postgresDSN)),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// PostgresDSN returns the PostgreSQL connection string
func (r *Repository) PostgresDSN() string {
	return r.postgresDSN
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	logger := logging.From(ctx)

	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logger.Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendPostgres:
		if r.postgresDSN == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "postgres-dsn is required when using postgres backend",
				goerr.V(FlagKey, "postgres-dsn"))
		}
		repo, err := postgres.New(ctx, r.postgresDSN)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize postgres repository")
		}
		logger.Info("Using PostgreSQL repository")
		return repo, nil

	case BackendMemory:
		logger.Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V("backend", r.backend))
	}
}
