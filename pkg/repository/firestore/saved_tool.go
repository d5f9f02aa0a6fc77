package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type savedToolDoc struct {
	UserID    string    `firestore:"UserID"`
	ToolID    string    `firestore:"ToolID"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

type savedToolRepository struct {
	client           *firestore.Client
	tools            *toolRepository
	collectionPrefix string
}

func newSavedToolRepository(client *firestore.Client, tools *toolRepository) *savedToolRepository {
	return &savedToolRepository{
		client: client,
		tools:  tools,
	}
}

func (r *savedToolRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, collectionSavedTools))
}

// savedDocID makes the (user, tool) pair the document key so duplicates collide
func savedDocID(userID model.UserID, toolID model.ToolID) string {
	return userID.String() + "__" + toolID.String()
}

func (r *savedToolRepository) Save(ctx context.Context, userID model.UserID, toolID model.ToolID) (bool, error) {
	if _, err := r.tools.Get(ctx, toolID); err != nil {
		return false, err
	}

	doc := &savedToolDoc{
		UserID:    userID.String(),
		ToolID:    toolID.String(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.collection().Doc(savedDocID(userID, toolID)).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to save tool", goerr.V("userID", userID), goerr.V("toolID", toolID))
	}
	return true, nil
}

func (r *savedToolRepository) Unsave(ctx context.Context, userID model.UserID, toolID model.ToolID) error {
	if _, err := r.collection().Doc(savedDocID(userID, toolID)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to unsave tool", goerr.V("userID", userID), goerr.V("toolID", toolID))
	}
	return nil
}

func (r *savedToolRepository) List(ctx context.Context, userID model.UserID) ([]*model.SavedTool, error) {
	iter := r.collection().
		Where("UserID", "==", userID.String()).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.SavedTool, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate saved tools", goerr.V("userID", userID))
		}

		var d savedToolDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal saved tool", goerr.V("docID", doc.Ref.ID))
		}
		result = append(result, &model.SavedTool{
			UserID:    model.UserID(d.UserID),
			ToolID:    model.ToolID(d.ToolID),
			CreatedAt: d.CreatedAt,
		})
	}
	return result, nil
}
