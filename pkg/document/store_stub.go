package document

import (
	"bytes"
	"context"
	"io"
)

// StubStore keeps binaries in memory for tests.
type StubStore struct {
	files map[string][]byte
}

func NewStubStore() *StubStore {
	return &StubStore{files: make(map[string][]byte)}
}

func (s *StubStore) Save(_ context.Context, id string, content io.Reader) (int64, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return 0, err
	}
	s.files[id] = data
	return int64(len(data)), nil
}

func (s *StubStore) Open(_ context.Context, id string) (io.ReadCloser, error) {
	data, ok := s.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *StubStore) Delete(_ context.Context, id string) error {
	delete(s.files, id)
	return nil
}

func (s *StubStore) Contains(id string) bool {
	_, ok := s.files[id]
	return ok
}
