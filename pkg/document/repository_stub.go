package document

import (
	"context"
	"sort"
)

// StubRepository is an in-memory metadata Repository for tests.
type StubRepository struct {
	docs map[stubDocKey]Document
}

type stubDocKey struct {
	tenantId int
	id       string
}

func NewStubRepository() *StubRepository {
	return &StubRepository{docs: make(map[stubDocKey]Document)}
}

func (r *StubRepository) Store(_ context.Context, tenantId int, doc Document) error {
	r.docs[stubDocKey{tenantId, doc.Id}] = doc
	return nil
}

func (r *StubRepository) Get(_ context.Context, tenantId int, id string) (Document, error) {
	doc, ok := r.docs[stubDocKey{tenantId, id}]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

func (r *StubRepository) List(_ context.Context, tenantId int) ([]Document, error) {
	var docs []Document
	for k, doc := range r.docs {
		if k.tenantId == tenantId {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
	return docs, nil
}

func (r *StubRepository) Delete(_ context.Context, tenantId int, id string) (bool, error) {
	k := stubDocKey{tenantId, id}
	if _, ok := r.docs[k]; !ok {
		return false, nil
	}
	delete(r.docs, k)
	return true, nil
}
