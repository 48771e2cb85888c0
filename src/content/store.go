// Package content holds the content-addressed storage adapters. Documents'
// payloads never go to the ledger; only the hash returned by a Store does.
package content

import (
	"context"
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// UnavailableHash is recorded in place of a real hash when the payload could
// not be stored.
const UnavailableHash = "mock-ipfs-hash"

var (
	// ErrNotFound is returned by Get for unknown hashes.
	ErrNotFound = errors.New("content: not found")
	// ErrInvalidHash is returned for hashes that do not parse as CIDs.
	ErrInvalidHash = errors.New("content: invalid hash")
	// ErrHashMismatch is returned when stored bytes do not match their hash.
	ErrHashMismatch = errors.New("content: hash mismatch")
	// ErrImmutable is returned when a hash is already bound to other bytes.
	ErrImmutable = errors.New("content: immutable object mismatch")
)

// Store is the write side of a content-addressed store.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
}

// ReadStore is implemented by stores that can also return content.
type ReadStore interface {
	Store
	Get(ctx context.Context, hash string) ([]byte, error)
}

// Hash returns the CIDv1 (raw codec, sha2-256) of data.
func Hash(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// HashString is Hash in string form.
func HashString(data []byte) (string, error) {
	id, err := Hash(data)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func parse(hash string) (cid.Cid, error) {
	id, err := cid.Decode(hash)
	if err != nil || !id.Defined() {
		return cid.Undef, ErrInvalidHash
	}
	return id, nil
}

func verify(id cid.Cid, data []byte) error {
	got, err := Hash(data)
	if err != nil {
		return err
	}
	if !got.Equals(id) {
		return ErrHashMismatch
	}
	return nil
}
