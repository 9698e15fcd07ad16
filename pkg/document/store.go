package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

var ErrFileNotFound = errors.New("stored file not found")

// Store persists document binaries under their document id.
type Store interface {
	Save(ctx context.Context, id string, content io.Reader) (int64, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

// FilesystemStore keeps binaries as flat files named by document id.
type FilesystemStore struct {
	dir string
}

func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create document storage dir: %w", err)
	}
	return &FilesystemStore{dir: dir}, nil
}

func (s *FilesystemStore) Save(_ context.Context, id string, content io.Reader) (int64, error) {
	path := filepath.Join(s.dir, id)
	f, err := os.Create(path)
	if err != nil {
		log.Errorf("could not create document file: %v", err)
		return 0, err
	}
	defer f.Close()

	written, err := io.Copy(f, content)
	if err != nil {
		log.Errorf("could not write document file: %v", err)
		os.Remove(path)
		return 0, err
	}
	return written, nil
}

func (s *FilesystemStore) Open(_ context.Context, id string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	return f, err
}

func (s *FilesystemStore) Delete(_ context.Context, id string) error {
	err := os.Remove(filepath.Join(s.dir, id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
