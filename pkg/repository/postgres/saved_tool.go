package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
)

type savedToolRepository struct {
	pool *pgxpool.Pool
}

func (r *savedToolRepository) Save(ctx context.Context, userID model.UserID, toolID model.ToolID) (bool, error) {
	return transact(ctx, r.pool, func(tx pgx.Tx) (bool, error) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT true FROM tools WHERE id = $1 FOR SHARE`, toolID.String()).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, goerr.Wrap(ErrNotFound, "tool not found", goerr.V("id", toolID))
			}
			return false, goerr.Wrap(err, "failed to lock tool", goerr.V("id", toolID))
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO saved_tools (user_id, tool_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, tool_id) DO NOTHING`,
			userID.String(), toolID.String(), time.Now().UTC(),
		)
		if err != nil {
			return false, goerr.Wrap(err, "failed to save tool", goerr.V("userID", userID), goerr.V("toolID", toolID))
		}
		return tag.RowsAffected() == 1, nil
	})
}

func (r *savedToolRepository) Unsave(ctx context.Context, userID model.UserID, toolID model.ToolID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM saved_tools WHERE user_id = $1 AND tool_id = $2`,
		userID.String(), toolID.String()); err != nil {
		return goerr.Wrap(err, "failed to unsave tool", goerr.V("userID", userID), goerr.V("toolID", toolID))
	}
	return nil
}

func (r *savedToolRepository) List(ctx context.Context, userID model.UserID) ([]*model.SavedTool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, tool_id, created_at FROM saved_tools
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query saved tools", goerr.V("userID", userID))
	}
	defer rows.Close()

	result := make([]*model.SavedTool, 0)
	for rows.Next() {
		var s model.SavedTool
		var uid, tid string
		if err := rows.Scan(&uid, &tid, &s.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan saved tool")
		}
		s.UserID = model.UserID(uid)
		s.ToolID = model.ToolID(tid)
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate saved tools")
	}
	return result, nil
}
