// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// CachedProvider wraps a Provider with a SQLite cache keyed by model name and
// the SHA-256 of the text. Re-ingesting unchanged abstracts skips the model
// and returns the exact bytes stored on first use.
type CachedProvider struct {
	inner Provider
	db    *sql.DB
}

// NewCachedProvider opens or creates the cache database at path.
func NewCachedProvider(inner Provider, path string) (*CachedProvider, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		model TEXT NOT NULL,
		text_hash TEXT NOT NULL,
		vector BLOB NOT NULL,
		PRIMARY KEY (model, text_hash)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating embedding cache schema: %w", err)
	}

	return &CachedProvider{inner: inner, db: db}, nil
}

// Close releases the database connection.
func (c *CachedProvider) Close() error {
	return c.db.Close()
}

// Embed returns the cached vector for text, computing and storing it on a miss.
func (c *CachedProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	key := hashText(text)
	model := c.inner.ModelName()

	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE model = ? AND text_hash = ?`, model, key,
	).Scan(&blob)
	switch {
	case err == nil:
		if vec := decodeVector(blob); len(vec) == c.inner.Dimensions() {
			return Embedding{Vector: vec}, nil
		}
		// Stale entry from a model with another dimensionality; recompute.
	case !errors.Is(err, sql.ErrNoRows):
		return Embedding{}, fmt.Errorf("reading embedding cache: %w", err)
	}

	emb, err := c.inner.Embed(ctx, text)
	if err != nil {
		return Embedding{}, err
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (model, text_hash, vector) VALUES (?, ?, ?)`,
		model, key, encodeVector(emb.Vector),
	); err != nil {
		return Embedding{}, fmt.Errorf("writing embedding cache: %w", err)
	}
	return emb, nil
}

// ModelName returns the wrapped provider's model name.
func (c *CachedProvider) ModelName() string { return c.inner.ModelName() }

// Dimensions returns the wrapped provider's dimensions.
func (c *CachedProvider) Dimensions() int { return c.inner.Dimensions() }

// Len returns the number of cached vectors.
func (c *CachedProvider) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT count(*) FROM embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting embedding cache: %w", err)
	}
	return n, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
