package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"github.com/secmon-lab/toolforge/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const distanceField = "vector_distance"

// toolDoc is the Firestore document representation of model.Tool.
// Embedding is stored as firestore.Vector32 so that FindNearest vector search works.
type toolDoc struct {
	ID             model.ToolID       `firestore:"ID"`
	Name           string             `firestore:"Name"`
	Description    string             `firestore:"Description"`
	Category       string             `firestore:"Category"`
	OriginalPrompt string             `firestore:"OriginalPrompt"`
	GeneratedHTML  string             `firestore:"GeneratedHTML"`
	Status         string             `firestore:"Status"`
	Embedding      firestore.Vector32 `firestore:"Embedding,omitempty"`
	OwnerUserID    string             `firestore:"OwnerUserID"`
	CreatedAt      time.Time          `firestore:"CreatedAt"`
	UpdatedAt      time.Time          `firestore:"UpdatedAt"`
}

func toToolDoc(t *model.Tool) *toolDoc {
	doc := &toolDoc{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Category:       t.Category,
		OriginalPrompt: t.OriginalPrompt,
		GeneratedHTML:  t.GeneratedHTML,
		Status:         t.Status.String(),
		OwnerUserID:    t.OwnerUserID.String(),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if len(t.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(t.Embedding)
	}
	return doc
}

func fromToolDoc(d *toolDoc) *model.Tool {
	t := &model.Tool{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		Category:       d.Category,
		OriginalPrompt: d.OriginalPrompt,
		GeneratedHTML:  d.GeneratedHTML,
		Status:         types.ToolStatus(d.Status),
		OwnerUserID:    model.UserID(d.OwnerUserID),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if len(d.Embedding) > 0 {
		t.Embedding = []float32(d.Embedding)
	}
	return t
}

func docToTool(doc *firestore.DocumentSnapshot) (*model.Tool, error) {
	var d toolDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromToolDoc(&d), nil
}

type toolRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newToolRepository(client *firestore.Client) *toolRepository {
	return &toolRepository{
		client: client,
	}
}

func (r *toolRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, collectionTools))
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

	docRef := r.collection().Doc(created.ID.String())
	if _, err := docRef.Create(ctx, toToolDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create tool", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *toolRepository) Get(ctx context.Context, id model.ToolID) (*model.Tool, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "tool not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get tool", goerr.V("id", id))
	}

	t, err := docToTool(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal tool", goerr.V("id", id))
	}
	return t, nil
}

func (r *toolRepository) list(ctx context.Context, q firestore.Query) ([]*model.Tool, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	tools := make([]*model.Tool, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tools")
		}

		t, err := docToTool(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal tool", goerr.V("docID", doc.Ref.ID))
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func (r *toolRepository) ListPublished(ctx context.Context) ([]*model.Tool, error) {
	q := r.collection().
		Where("Status", "==", types.ToolStatusPublished.String()).
		OrderBy("CreatedAt", firestore.Desc)
	return r.list(ctx, q)
}

func (r *toolRepository) ListPending(ctx context.Context) ([]*model.Tool, error) {
	q := r.collection().
		Where("Status", "==", types.ToolStatusPending.String()).
		OrderBy("CreatedAt", firestore.Asc)
	return r.list(ctx, q)
}

func (r *toolRepository) UpdateStatus(ctx context.Context, id model.ToolID, newStatus types.ToolStatus, embedding []float32) (*model.Tool, error) {
	docRef := r.collection().Doc(id.String())

	var updated *model.Tool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "tool not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get tool", goerr.V("id", id))
		}

		t, err := docToTool(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to unmarshal tool", goerr.V("id", id))
		}

		now := time.Now().UTC()
		var embeddingValue any = firestore.Delete
		t.Embedding = nil
		if len(embedding) > 0 {
			embeddingValue = firestore.Vector32(embedding)
			t.Embedding = append([]float32(nil), embedding...)
		}
		t.Status = newStatus
		t.UpdatedAt = now

		updated = t
		return tx.Update(docRef, []firestore.Update{
			{Path: "Status", Value: newStatus.String()},
			{Path: "Embedding", Value: embeddingValue},
			{Path: "UpdatedAt", Value: now},
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update tool status", goerr.V("id", id), goerr.V("status", newStatus))
	}

	return updated, nil
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

// SearchTools runs a cosine FindNearest over published tools. Firestore
// reports cosine distance, so similarity is 1 - distance.
func (r *toolRepository) SearchTools(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*model.ToolMatch, error) {
	maxDistance := 1 - threshold
	vq := r.collection().
		Where("Status", "==", types.ToolStatusPublished.String()).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{
				DistanceThreshold:   &maxDistance,
				DistanceResultField: distanceField,
			})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.ToolMatch, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		t, err := docToTool(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal tool from vector search")
		}

		distance, err := doc.DataAt(distanceField)
		if err != nil {
			return nil, goerr.Wrap(err, "vector search result has no distance", goerr.V("id", t.ID))
		}
		d, ok := distance.(float64)
		if !ok {
			return nil, goerr.New("vector distance is not float64", goerr.V("value", distance))
		}

		similarity := 1 - d
		// DistanceThreshold is inclusive while the match must exceed threshold
		if similarity <= threshold {
			continue
		}
		matches = append(matches, &model.ToolMatch{Tool: t, Similarity: similarity})
	}

	return matches, nil
}
