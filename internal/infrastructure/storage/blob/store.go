// Package blob implements a content-addressed file store for uploaded
// invoice workbooks. Files are compressed with zstd and keyed by the
// SHA-256 of their uncompressed content, so re-uploading the same
// workbook never duplicates storage.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/klauspost/compress/zstd"

	"partsledger/internal/core/apperror"
)

// refPattern matches a SHA-256 hex digest.
var refPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Store persists blobs on the local filesystem under a two-level fan-out
// derived from the content hash.
type Store struct {
	root    string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewStore creates a blob store rooted at dir, creating it if missing.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Store{root: dir, encoder: encoder, decoder: decoder}, nil
}

// Put stores data and returns its content reference. Storing the same
// content twice returns the same reference without rewriting the file.
func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", apperror.NewValidation("file is empty")
	}

	sum := sha256.Sum256(data)
	ref := hex.EncodeToString(sum[:])

	path := s.path(ref)
	if _, err := os.Stat(path); err == nil {
		return ref, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	compressed := s.encoder.EncodeAll(data, nil)

	// Write through a temp file so a crashed write never leaves a
	// truncated blob under the final name.
	tmp, err := os.CreateTemp(filepath.Dir(path), "blob-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("commit blob: %w", err)
	}

	return ref, nil
}

// Get retrieves blob content by reference.
func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !refPattern.MatchString(ref) {
		return nil, apperror.NewValidation("invalid blob reference").WithDetail("ref", ref)
	}

	compressed, err := os.ReadFile(s.path(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NewNotFound("blob", ref)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress blob: %w", err)
	}

	// The store is content-addressed; a hash mismatch means disk
	// corruption, not a caller mistake.
	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != ref {
		return nil, apperror.NewConsistency(fmt.Sprintf("blob %s content hash mismatch", ref))
	}
	return data, nil
}

// Exists reports whether a blob is present.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !refPattern.MatchString(ref) {
		return false, apperror.NewValidation("invalid blob reference").WithDetail("ref", ref)
	}
	_, err := os.Stat(s.path(ref))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat blob: %w", err)
}

func (s *Store) path(ref string) string {
	return filepath.Join(s.root, ref[:2], ref[2:]+".zst")
}
