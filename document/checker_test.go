package document_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/styleforge/document"
)

func waitForStatus(t *testing.T, store *document.Store, id string) document.ValidationStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		doc, err := store.Get(id)
		require.NoError(t, err)
		if doc.ValidationStatus != document.ValidationPending {
			return doc.ValidationStatus
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("validation never completed")
	return document.ValidationPending
}

func TestChecker_MarksValid(t *testing.T) {
	store := document.NewStore()
	doc := store.Put("note.xml", document.KindSource, []byte("<note/>"))

	checker := document.NewChecker(store, func(ctx context.Context, d *document.Document) error {
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	checker.Start(ctx, 1)
	checker.Schedule(ctx, doc.ID)

	assert.Equal(t, document.ValidationValid, waitForStatus(t, store, doc.ID))
}

func TestChecker_MarksInvalid(t *testing.T) {
	store := document.NewStore()
	doc := store.Put("bad.xml", document.KindSource, []byte("<note"))

	checker := document.NewChecker(store, func(ctx context.Context, d *document.Document) error {
		return errors.New("unexpected EOF")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	checker.Start(ctx, 1)
	checker.Schedule(ctx, doc.ID)

	assert.Equal(t, document.ValidationInvalid, waitForStatus(t, store, doc.ID))
	got, err := store.Get(doc.ID)
	require.NoError(t, err)
	assert.Contains(t, got.ValidationError, "unexpected EOF")
}

func TestChecker_TimeoutMarksInvalid(t *testing.T) {
	store := document.NewStore()
	doc := store.Put("slow.xml", document.KindSource, []byte("<note/>"))

	checker := document.NewChecker(store,
		func(ctx context.Context, d *document.Document) error {
			time.Sleep(time.Second)
			return nil
		},
		document.WithCheckTimeout(30*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	checker.Start(ctx, 1)

	start := time.Now()
	checker.Schedule(ctx, doc.ID)

	assert.Equal(t, document.ValidationInvalid, waitForStatus(t, store, doc.ID))
	assert.Less(t, time.Since(start), 800*time.Millisecond)

	got, err := store.Get(doc.ID)
	require.NoError(t, err)
	assert.Contains(t, got.ValidationError, "timed out")
}
