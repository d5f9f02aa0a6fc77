package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
)

const toolColumns = `id, name, description, category, original_prompt, generated_html,
	status, embedding, owner_user_id, created_at, updated_at`

type toolRepository struct {
	pool *pgxpool.Pool
}

func scanTool(row pgx.Row, extra ...any) (*model.Tool, error) {
	var (
		t         model.Tool
		status    string
		ownerID   string
		embedding *pgvector.Vector
	)
	dest := []any{
		&t.ID, &t.Name, &t.Description, &t.Category, &t.OriginalPrompt, &t.GeneratedHTML,
		&status, &embedding, &ownerID, &t.CreatedAt, &t.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	t.Status = types.ToolStatus(status)
	t.OwnerUserID = model.UserID(ownerID)
	if embedding != nil {
		t.Embedding = embedding.Slice()
	}
	return &t, nil
}

func toVector(embedding []float32) *pgvector.Vector {
	if len(embedding) == 0 {
		return nil
	}
	v := pgvector.NewVector(embedding)
	return &v
}

func (r *toolRepository) Create(ctx context.Context, tool *model.Tool) (*model.Tool, error) {
	now := time.Now().UTC()
	created := *tool
	if created.ID == "" {
		created.ID = model.NewToolID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	row := r.pool.QueryRow(ctx, `
		INSERT INTO tools (`+toolColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+toolColumns,
		created.ID.String(), created.Name, created.Description, created.Category,
		created.OriginalPrompt, created.GeneratedHTML, created.Status.String(),
		toVector(created.Embedding), created.OwnerUserID.String(), created.CreatedAt, created.UpdatedAt,
	)

	t, err := scanTool(row)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create tool", goerr.V("id", created.ID))
	}
	return t, nil
}

func (r *toolRepository) Get(ctx context.Context, id model.ToolID) (*model.Tool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = $1`, id.String())
	t, err := scanTool(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "tool not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get tool", goerr.V("id", id))
	}
	return t, nil
}

func (r *toolRepository) list(ctx context.Context, query string, args ...any) ([]*model.Tool, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query tools")
	}
	defer rows.Close()

	tools := make([]*model.Tool, 0)
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan tool")
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tools")
	}
	return tools, nil
}

func (r *toolRepository) ListPublished(ctx context.Context) ([]*model.Tool, error) {
	return r.list(ctx, `SELECT `+toolColumns+` FROM tools WHERE status = $1 ORDER BY created_at DESC`,
		types.ToolStatusPublished.String())
}

func (r *toolRepository) ListPending(ctx context.Context) ([]*model.Tool, error) {
	return r.list(ctx, `SELECT `+toolColumns+` FROM tools WHERE status = $1 ORDER BY created_at ASC`,
		types.ToolStatusPending.String())
}

// UpdateStatus writes status and embedding in one statement. The
// tools_embedding_published constraint rejects any pair that would break the
// published/embedding invariant.
func (r *toolRepository) UpdateStatus(ctx context.Context, id model.ToolID, status types.ToolStatus, embedding []float32) (*model.Tool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tools SET status = $2, embedding = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+toolColumns,
		id.String(), status.String(), toVector(embedding), time.Now().UTC(),
	)

	t, err := scanTool(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "tool not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to update tool status", goerr.V("id", id), goerr.V("status", status))
	}
	return t, nil
}

func (r *toolRepository) MatchTool(ctx context.Context, embedding []float32, threshold float64) (*model.ToolMatch, error) {
	matches, err := r.SearchTools(ctx, embedding, threshold, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// SearchTools orders by cosine distance (<=>) so the HNSW index is usable;
// similarity is 1 - distance.
func (r *toolRepository) SearchTools(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*model.ToolMatch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+toolColumns+`, 1 - (embedding <=> $1) AS similarity
		FROM tools
		WHERE status = $2
		  AND embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) > $3
		ORDER BY embedding <=> $1
		LIMIT $4`,
		pgvector.NewVector(embedding), types.ToolStatusPublished.String(), threshold, limit,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search tools")
	}
	defer rows.Close()

	matches := make([]*model.ToolMatch, 0, limit)
	for rows.Next() {
		var similarity float64
		t, err := scanTool(rows, &similarity)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan search result")
		}
		matches = append(matches, &model.ToolMatch{Tool: t, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate search results")
	}
	return matches, nil
}
