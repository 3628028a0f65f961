package memory

import "context"

// LogStore is the chronological log boundary: an append-only,
// score-ordered ledger of text entries per identity key.
//
// For a fixed key, appends with strictly increasing scores never
// produce out-of-order reads. Appends with identical scores may
// interleave arbitrarily; the SQLite implementation breaks ties by
// insertion order, other backings may not.
type LogStore interface {
	// Append adds one entry under key, ordered by score.
	Append(ctx context.Context, key, entry string, score int64) error

	// Range returns entries with min <= score <= max, ascending.
	Range(ctx context.Context, key string, min, max int64) ([]string, error)

	// Exists reports whether any entry exists under key. Used for
	// seeding idempotency, so it must be cheap.
	Exists(ctx context.Context, key string) (bool, error)
}

// VectorRecord is one semantically indexed passage. Records are
// created 1:1 with log writes and never updated or deleted; the log is
// authoritative, the index is a derived view.
type VectorRecord struct {
	// ID is unique per write.
	ID string

	// Embedding is the passage's vector representation.
	Embedding []float32

	// Text is the raw passage.
	Text string

	// Persona, Model and User mirror the owning identity.
	Persona string
	Model   string
	User    string
}

// ScoredText is a semantic search hit.
type ScoredText struct {
	Text  string
	Score float32
}

// VectorIndex is the semantic index boundary: per-namespace vector
// upsert and nearest-neighbor query. Upserts are at-least-once;
// duplicate IDs overwrite.
type VectorIndex interface {
	// Upsert stores a record in the namespace.
	Upsert(ctx context.Context, namespace string, rec VectorRecord) error

	// Query returns up to topK passages ranked by descending
	// similarity. An absent namespace yields an empty result, not an
	// error.
	Query(ctx context.Context, namespace string, embedding []float32, topK int) ([]ScoredText, error)
}

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), onnx (local, build tag "onnx").
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
