package repository_test

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
)

// randomUnit returns a random unit vector. Two random vectors of this
// dimension are nearly orthogonal, so runs sharing a database don't match
// each other's tools.
func randomUnit() []float32 {
	v := make([]float32, model.EmbeddingDimension)
	var norm float64
	for i := range v {
		x := rand.NormFloat64()
		v[i] = float32(x)
		norm += x * x
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// blend returns the normalized vector cos(theta)*a + sin(theta)*b where b is
// made orthogonal to a, so its cosine similarity to a is cos(theta).
func blend(a, b []float32, similarity float64) []float32 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	ortho := make([]float64, len(a))
	var norm float64
	for i := range a {
		ortho[i] = float64(b[i]) - dot*float64(a[i])
		norm += ortho[i] * ortho[i]
	}
	norm = math.Sqrt(norm)

	sin := math.Sqrt(1 - similarity*similarity)
	out := make([]float32, len(a))
	for i := range a {
		out[i] = float32(similarity*float64(a[i]) + sin*ortho[i]/norm)
	}
	return out
}

func newTestTool(name string) *model.Tool {
	return &model.Tool{
		Name:           name,
		Description:    "Description of " + name,
		Category:       "Text",
		OriginalPrompt: "build " + name,
		GeneratedHTML:  "<html><body>" + name + "</body></html>",
		Status:         types.ToolStatusPending,
		OwnerUserID:    model.UserID(fmt.Sprintf("user-%d", time.Now().UnixNano())),
	}
}

func createPublished(t *testing.T, repo interfaces.Repository, name string, embedding []float32) *model.Tool {
	t.Helper()
	ctx := context.Background()

	created, err := repo.Tool().Create(ctx, newTestTool(name))
	gt.NoError(t, err).Required()

	published, err := repo.Tool().UpdateStatus(ctx, created.ID, types.ToolStatusPublished, embedding)
	gt.NoError(t, err).Required()
	return published
}

func containsTool(tools []*model.Tool, id model.ToolID) bool {
	for _, t := range tools {
		if t.ID == id {
			return true
		}
	}
	return false
}

func runToolRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		input := newTestTool("Word Counter")
		created, err := repo.Tool().Create(ctx, input)
		gt.NoError(t, err).Required()

		gt.String(t, created.ID.String()).NotEqual("")
		gt.Value(t, created.Name).Equal(input.Name)
		gt.Value(t, created.Description).Equal(input.Description)
		gt.Value(t, created.Category).Equal(input.Category)
		gt.Value(t, created.OriginalPrompt).Equal(input.OriginalPrompt)
		gt.Value(t, created.GeneratedHTML).Equal(input.GeneratedHTML)
		gt.Value(t, created.Status).Equal(types.ToolStatusPending)
		gt.Value(t, created.OwnerUserID).Equal(input.OwnerUserID)
		gt.A(t, created.Embedding).Length(0)
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := repo.Tool().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)
		gt.Value(t, got.Name).Equal(input.Name)
		gt.Value(t, got.Status).Equal(types.ToolStatusPending)
		gt.A(t, got.Embedding).Length(0)
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Tool().Get(context.Background(), model.NewToolID())
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("UpdateStatus to published stores embedding", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Tool().Create(ctx, newTestTool("Image Resizer"))
		gt.NoError(t, err).Required()

		vec := randomUnit()
		updated, err := repo.Tool().UpdateStatus(ctx, created.ID, types.ToolStatusPublished, vec)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.ToolStatusPublished)
		gt.A(t, updated.Embedding).Length(model.EmbeddingDimension)

		got, err := repo.Tool().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.ToolStatusPublished)
		gt.A(t, got.Embedding).Length(model.EmbeddingDimension)
		gt.Value(t, got.Embedding[0]).Equal(vec[0])
	})

	t.Run("UpdateStatus to rejected clears embedding", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		published := createPublished(t, repo, "CSV to JSON", randomUnit())

		rejected, err := repo.Tool().UpdateStatus(ctx, published.ID, types.ToolStatusRejected, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, rejected.Status).Equal(types.ToolStatusRejected)
		gt.A(t, rejected.Embedding).Length(0)

		got, err := repo.Tool().Get(ctx, published.ID)
		gt.NoError(t, err).Required()
		gt.A(t, got.Embedding).Length(0)
	})

	t.Run("UpdateStatus returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Tool().UpdateStatus(context.Background(), model.NewToolID(), types.ToolStatusPublished, randomUnit())
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("ListPublished and ListPending filter and order by status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Tool().Create(ctx, newTestTool("first pending"))
		gt.NoError(t, err).Required()
		time.Sleep(5 * time.Millisecond)
		second, err := repo.Tool().Create(ctx, newTestTool("second pending"))
		gt.NoError(t, err).Required()
		time.Sleep(5 * time.Millisecond)
		older := createPublished(t, repo, "older published", randomUnit())
		time.Sleep(5 * time.Millisecond)
		newer := createPublished(t, repo, "newer published", randomUnit())

		pending, err := repo.Tool().ListPending(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, containsTool(pending, first.ID)).True()
		gt.Bool(t, containsTool(pending, second.ID)).True()
		gt.Bool(t, containsTool(pending, older.ID)).False()
		for i := 1; i < len(pending); i++ {
			gt.Bool(t, pending[i].CreatedAt.Before(pending[i-1].CreatedAt)).False()
		}

		published, err := repo.Tool().ListPublished(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, containsTool(published, older.ID)).True()
		gt.Bool(t, containsTool(published, newer.ID)).True()
		gt.Bool(t, containsTool(published, first.ID)).False()
		for i := 1; i < len(published); i++ {
			gt.Bool(t, published[i].CreatedAt.After(published[i-1].CreatedAt)).False()
		}
	})

	t.Run("MatchTool returns the best published match above threshold", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		query := randomUnit()
		other := randomUnit()
		nearest := createPublished(t, repo, "close", blend(query, other, 0.9))
		_ = createPublished(t, repo, "medium", blend(query, other, 0.7))

		match, err := repo.Tool().MatchTool(ctx, query, 0.67)
		gt.NoError(t, err).Required()
		gt.Value(t, match).NotNil().Required()
		gt.Value(t, match.Tool.ID).Equal(nearest.ID)
		gt.Number(t, match.Similarity).Greater(0.85)
		gt.Value(t, match.Tool.GeneratedHTML).Equal(nearest.GeneratedHTML)
	})

	t.Run("MatchTool returns nil when nothing exceeds threshold", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		query := randomUnit()
		_ = createPublished(t, repo, "far", blend(query, randomUnit(), 0.5))

		match, err := repo.Tool().MatchTool(ctx, query, 0.67)
		gt.NoError(t, err)
		gt.Value(t, match).Nil()
	})

	t.Run("MatchTool excludes a similarity equal to threshold", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		query := make([]float32, model.EmbeddingDimension)
		query[0] = 1
		orthogonal := make([]float32, model.EmbeddingDimension)
		orthogonal[1] = 1
		_ = createPublished(t, repo, "orthogonal", orthogonal)

		match, err := repo.Tool().MatchTool(ctx, query, 0)
		gt.NoError(t, err)
		gt.Value(t, match).Nil()
	})

	t.Run("MatchTool never returns a pending tool", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		query := randomUnit()
		// Pending tools carry no embedding, so approve then reject to make
		// sure a tool that was once similar is excluded.
		tool := createPublished(t, repo, "was published", query)
		_, err := repo.Tool().UpdateStatus(ctx, tool.ID, types.ToolStatusRejected, nil)
		gt.NoError(t, err).Required()

		pending, err := repo.Tool().Create(ctx, newTestTool("pending twin"))
		gt.NoError(t, err).Required()

		match, err := repo.Tool().MatchTool(ctx, query, 0.67)
		gt.NoError(t, err)
		if match != nil {
			gt.Value(t, match.Tool.ID).NotEqual(tool.ID)
			gt.Value(t, match.Tool.ID).NotEqual(pending.ID)
		}
	})

	t.Run("SearchTools ranks by similarity and honors limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		query := randomUnit()
		other := randomUnit()
		a := createPublished(t, repo, "a", blend(query, other, 0.95))
		b := createPublished(t, repo, "b", blend(query, other, 0.8))
		c := createPublished(t, repo, "c", blend(query, other, 0.6))
		_ = createPublished(t, repo, "d", blend(query, other, 0.2))

		results, err := repo.Tool().SearchTools(ctx, query, 0.4, 20)
		gt.NoError(t, err).Required()
		gt.A(t, results).Length(3).Required()
		gt.Value(t, results[0].Tool.ID).Equal(a.ID)
		gt.Value(t, results[1].Tool.ID).Equal(b.ID)
		gt.Value(t, results[2].Tool.ID).Equal(c.ID)

		limited, err := repo.Tool().SearchTools(ctx, query, 0.4, 2)
		gt.NoError(t, err).Required()
		gt.A(t, limited).Length(2)
	})
}

func runSavedToolRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Save is idempotent and List returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := model.UserID(fmt.Sprintf("saver-%d", time.Now().UnixNano()))

		t1 := createPublished(t, repo, "saved one", randomUnit())
		t2 := createPublished(t, repo, "saved two", randomUnit())

		created, err := repo.SavedTool().Save(ctx, userID, t1.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, created).True()

		created, err = repo.SavedTool().Save(ctx, userID, t1.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, created).False()

		time.Sleep(5 * time.Millisecond)
		created, err = repo.SavedTool().Save(ctx, userID, t2.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, created).True()

		saved, err := repo.SavedTool().List(ctx, userID)
		gt.NoError(t, err).Required()
		gt.A(t, saved).Length(2).Required()
		gt.Value(t, saved[0].ToolID).Equal(t2.ID)
		gt.Value(t, saved[1].ToolID).Equal(t1.ID)
	})

	t.Run("Save unknown tool returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.SavedTool().Save(context.Background(), "someone", model.NewToolID())
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Unsave removes only the caller's bookmark", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		alice := model.UserID(fmt.Sprintf("alice-%d", time.Now().UnixNano()))
		bob := model.UserID(fmt.Sprintf("bob-%d", time.Now().UnixNano()))

		tool := createPublished(t, repo, "shared", randomUnit())
		_, err := repo.SavedTool().Save(ctx, alice, tool.ID)
		gt.NoError(t, err).Required()
		_, err = repo.SavedTool().Save(ctx, bob, tool.ID)
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.SavedTool().Unsave(ctx, alice, tool.ID))
		gt.NoError(t, repo.SavedTool().Unsave(ctx, alice, tool.ID))

		aliceSaved, err := repo.SavedTool().List(ctx, alice)
		gt.NoError(t, err).Required()
		gt.A(t, aliceSaved).Length(0)

		bobSaved, err := repo.SavedTool().List(ctx, bob)
		gt.NoError(t, err).Required()
		gt.A(t, bobSaved).Length(1)
	})
}
