package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ipfs/go-cid"
)

// DefaultIPFSBin is the Kubo binary used when IPFSOptions.Bin is empty.
const DefaultIPFSBin = "ipfs"

// raw blocks, sha2-256, CIDv1: the same CID Hash computes
var blockPutArgs = []string{
	"block", "put",
	"--quiet",
	"--format=raw",
	"--mhtype=sha2-256",
	"--mhlen=32",
	"--cid-version=1",
	"/dev/stdin",
}

// IPFSOptions configures an IPFSStore.
type IPFSOptions struct {
	Bin string
	// Env replaces the command environment when set, e.g. to point IPFS_PATH
	// at another repository.
	Env []string
}

// IPFSStore keeps document payloads as raw blocks of the local Kubo
// repository. It shells out to the ipfs binary and needs no daemon.
type IPFSStore struct {
	opts IPFSOptions
}

// NewIPFSStore creates an IPFSStore.
func NewIPFSStore(opts IPFSOptions) *IPFSStore {
	if opts.Bin == "" {
		opts.Bin = DefaultIPFSBin
	}
	return &IPFSStore{opts: opts}
}

// Put writes data as a block and checks that Kubo derived the expected CID.
func (s *IPFSStore) Put(ctx context.Context, data []byte) (string, error) {
	want, err := Hash(data)
	if err != nil {
		return "", err
	}

	out, err := s.ipfs(ctx, bytes.NewReader(data), blockPutArgs...)
	if err != nil {
		return "", err
	}

	got, err := cid.Decode(strings.TrimSpace(string(out)))
	if err != nil {
		return "", fmt.Errorf("ipfs: block put returned %q: %w", out, err)
	}
	if !got.Equals(want) {
		return "", ErrHashMismatch
	}

	return want.String(), nil
}

// Get reads the block of hash and verifies it before returning it.
func (s *IPFSStore) Get(ctx context.Context, hash string) ([]byte, error) {
	id, err := parse(hash)
	if err != nil {
		return nil, err
	}

	out, err := s.ipfs(ctx, nil, "block", "get", id.String())
	if err != nil {
		return nil, err
	}

	if err := verify(id, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *IPFSStore) ipfs(ctx context.Context, stdin *bytes.Reader, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.opts.Bin, args...)
	cmd.Env = s.opts.Env
	if stdin != nil {
		cmd.Stdin = stdin
	}

	out, err := cmd.Output()
	if err != nil {
		return nil, commandError(args[1], err)
	}
	return out, nil
}

// commandError turns a failed ipfs invocation into ErrNotFound or an error
// carrying Kubo's own message.
func commandError(op string, err error) error {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return fmt.Errorf("ipfs block %s: %w", op, err)
	}

	msg := strings.TrimSpace(string(ee.Stderr))
	if strings.Contains(strings.ToLower(msg), "not found") {
		return ErrNotFound
	}
	if msg == "" {
		msg = ee.Error()
	}
	return fmt.Errorf("ipfs block %s: %s", op, msg)
}
