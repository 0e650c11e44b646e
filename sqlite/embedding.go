package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fwojciec/sift"
)

// maxKeysPerQuery bounds the placeholders in one IN clause.
const maxKeysPerQuery = 500

// Compile-time interface verification.
var _ sift.EmbeddingCache = (*EmbeddingCache)(nil)

// EmbeddingCache implements sift.EmbeddingCache using SQLite. Vectors are
// stored as little-endian float32 blobs.
type EmbeddingCache struct {
	db  *DB
	now func() time.Time
}

// NewEmbeddingCache creates a new EmbeddingCache.
func NewEmbeddingCache(db *DB) *EmbeddingCache {
	return &EmbeddingCache{db: db, now: time.Now}
}

// GetEmbeddings implements sift.EmbeddingCache.
func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, keys []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(keys))
	for start := 0; start < len(keys); start += maxKeysPerQuery {
		batch := keys[start:min(start+maxKeysPerQuery, len(keys))]
		if err := c.get(ctx, batch, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *EmbeddingCache) get(ctx context.Context, keys []string, out map[string][]float32) error {
	var query strings.Builder
	args := make([]any, len(keys))
	query.WriteString("SELECT key, dims, vector FROM embeddings WHERE key IN (")
	for i, k := range keys {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("?")
		args[i] = k
	}
	query.WriteString(")")

	rows, err := c.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var dims int
		var blob []byte
		if err := rows.Scan(&key, &dims, &blob); err != nil {
			return err
		}
		vec, err := decodeVector(blob, dims)
		if err != nil {
			return fmt.Errorf("failed to decode embedding %s: %w", key, err)
		}
		out[key] = vec
	}
	return rows.Err()
}

// PutEmbeddings implements sift.EmbeddingCache. Existing keys are replaced.
func (c *EmbeddingCache) PutEmbeddings(ctx context.Context, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO embeddings (key, dims, vector, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := c.now().UTC().Format(time.RFC3339)
	for key, vec := range vectors {
		if _, err := stmt.ExecContext(ctx, key, len(vec), encodeVector(vec), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&n)
	return n, err
}

// Prune deletes vectors cached before cutoff and returns how many were
// removed.
func (c *EmbeddingCache) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM embeddings WHERE created_at < ?", cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte, dims int) ([]float32, error) {
	if len(blob) != 4*dims {
		return nil, fmt.Errorf("blob has %d bytes, want %d", len(blob), 4*dims)
	}
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec, nil
}
