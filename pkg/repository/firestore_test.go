package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/secmon-lab/toolforge/pkg/domain/interfaces"
	"github.com/secmon-lab/toolforge/pkg/repository/firestore"
)

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	// Vector search needs the indexes created by `toolforge migrate`, so the
	// default collections are used and runs are isolated by random embeddings.
	var opts []firestore.Option
	if prefix := os.Getenv("TEST_FIRESTORE_PREFIX"); prefix != "" {
		opts = append(opts, firestore.WithCollectionPrefix(prefix))
	}

	ctx := context.Background()
	repo, err := firestore.New(ctx, projectID, databaseID, opts...)
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func TestFirestoreToolRepository(t *testing.T) {
	runToolRepositoryTest(t, newFirestoreRepository)
}

func TestFirestoreSavedToolRepository(t *testing.T) {
	runSavedToolRepositoryTest(t, newFirestoreRepository)
}
