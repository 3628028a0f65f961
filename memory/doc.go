// Package memory is the conversation memory core: a hybrid of a
// chronological log and a semantic index over the same content.
//
// The log (LogStore) is an append-only, score-ordered ledger of text
// entries per identity key. It preserves exact conversation order
// across unbounded growth; the Manager bounds what is replayed into
// the model by taking only the most recent entries.
//
// The index (VectorIndex) holds one vector record per log write,
// namespaced per user, for similarity search beyond the replay window.
// Writes to the index are at-least-once and best-effort: the log is
// authoritative and the index is a derived view that could be rebuilt
// by replaying the log.
//
// Seeding populates a persona's scripted backstory exactly once per
// identity, gated by an existence check on the log.
//
// Local implementations:
//   - logstore/sqlite: score-ordered table on modernc.org/sqlite
//   - store/chromem: chromem-go embedded vector database
//   - embedder/mock: deterministic hash-based embeddings for tests
//   - embedder/onnx: all-MiniLM-L6-v2 via ONNX Runtime (build tag "onnx")
package memory
