package content

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"
)

// LocalStore is a filesystem-backed content store. Objects are written once
// under <root>/<first two chars of hash>/<hash> and verified on read.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("content: root directory is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := Hash(data)
	if err != nil {
		return "", err
	}

	path := s.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0444)
	if err != nil {
		if !os.IsExist(err) {
			return "", err
		}
		existing, rerr := s.read(id)
		if rerr != nil || !bytes.Equal(existing, data) {
			return "", ErrImmutable
		}
		return id.String(), nil
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return id.String(), nil
}

func (s *LocalStore) Get(ctx context.Context, hash string) ([]byte, error) {
	id, err := parse(hash)
	if err != nil {
		return nil, err
	}
	return s.read(id)
}

func (s *LocalStore) read(id cid.Cid) ([]byte, error) {
	b, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := verify(id, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *LocalStore) pathFor(id cid.Cid) string {
	str := id.String()
	if len(str) < 2 {
		return filepath.Join(s.root, str)
	}
	return filepath.Join(s.root, str[:2], str)
}
