//go:build onnx

package main

import (
	"github.com/coachly/coachd/config"
	"github.com/coachly/coachd/memory"
	"github.com/coachly/coachd/memory/embedder/mock"
	"github.com/coachly/coachd/memory/embedder/onnx"
)

// newEmbedder returns the ONNX embedder when the config points at a
// model file, the hash embedder otherwise.
func newEmbedder(cfg *config.Config) (memory.Embedder, error) {
	if cfg.Embedder.ModelPath == "" {
		return mock.New(0), nil
	}
	return onnx.New(onnx.Config{
		ModelPath:     cfg.Embedder.ModelPath,
		TokenizerPath: cfg.Embedder.TokenizerPath,
		LibraryPath:   cfg.Embedder.LibraryPath,
	})
}
