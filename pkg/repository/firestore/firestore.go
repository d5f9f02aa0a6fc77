package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = interfaces.ErrNotFound

const (
	collectionTools      = "tools"
	collectionSavedTools = "saved_tools"
)

type Firestore struct {
	client    *firestore.Client
	tool      *toolRepository
	savedTool *savedToolRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates collections, mainly for tests sharing a project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.tool.collectionPrefix = prefix
		f.savedTool.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	toolRepo := newToolRepository(client)
	f := &Firestore{
		client:    client,
		tool:      toolRepo,
		savedTool: newSavedToolRepository(client, toolRepo),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Tool() interfaces.ToolRepository {
	return f.tool
}

func (f *Firestore) SavedTool() interfaces.SavedToolRepository {
	return f.savedTool
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
