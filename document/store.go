package document

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document handle does not exist.
var ErrNotFound = errors.New("document not found")

// Store is an in-memory document registry.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]*Document),
	}
}

// Put stores content under a new handle and returns the created document.
func (s *Store) Put(name string, kind Kind, content []byte) *Document {
	doc := &Document{
		ID:               uuid.New().String(),
		Name:             name,
		Kind:             kind,
		Content:          content,
		ValidationStatus: ValidationPending,
		AddedAt:          time.Now(),
	}

	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.mu.Unlock()

	return doc
}

// Get returns the document for a handle.
func (s *Store) Get(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

// GetByName returns the first document with the given display name.
func (s *Store) GetByName(name string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if doc.Name == name {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("get by name %s: %w", name, ErrNotFound)
}

// List returns all stored documents ordered by ingestion time.
func (s *Store) List() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].AddedAt.Equal(docs[j].AddedAt) {
			return docs[i].Name < docs[j].Name
		}
		return docs[i].AddedAt.Before(docs[j].AddedAt)
	})
	return docs
}

// ListByKind returns all stored documents of the given kind.
func (s *Store) ListByKind(kind Kind) []*Document {
	all := s.List()
	docs := make([]*Document, 0, len(all))
	for _, doc := range all {
		if doc.Kind == kind {
			docs = append(docs, doc)
		}
	}
	return docs
}

// SetValidation records the outcome of a document's validation check.
// The transition from pending happens at most once; later calls are ignored.
func (s *Store) SetValidation(id string, status ValidationStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("set validation %s: %w", id, ErrNotFound)
	}
	if doc.ValidationStatus != ValidationPending {
		return nil
	}
	doc.ValidationStatus = status
	doc.ValidationError = errMsg
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
