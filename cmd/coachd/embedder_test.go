//go:build !onnx

package main

import (
	"testing"

	"github.com/coachly/coachd/config"
)

func TestNewEmbedder_DefaultBuild(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		t.Fatalf("newEmbedder failed: %v", err)
	}
	if embedder == nil {
		t.Fatal("Expected an embedder")
	}
	if embedder.Dimensions() != 384 {
		t.Errorf("Expected 384 dimensions, got %d", embedder.Dimensions())
	}
}
