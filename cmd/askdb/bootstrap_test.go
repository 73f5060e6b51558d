package main

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/askdb/internal/domain"
)

type echoEmbedder struct {
	texts []string
}

func (e *echoEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.texts = append(e.texts, text)
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func TestWithInstruction(t *testing.T) {
	inner := &echoEmbedder{}
	if got := withInstruction(inner, ""); got != domain.Embedder(inner) {
		t.Fatal("empty instruction must return the inner embedder")
	}

	wrapped := withInstruction(inner, "search_query: ")
	if _, err := wrapped.Embed(context.Background(), "users from india"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.texts) != 1 || inner.texts[0] != "search_query: users from india" {
		t.Errorf("unexpected embedded texts %q", inner.texts)
	}
}

func TestSeconds(t *testing.T) {
	if got := seconds(3); got != 3*time.Second {
		t.Errorf("seconds(3) = %v", got)
	}
	if got := seconds(0); got != 0 {
		t.Errorf("seconds(0) = %v", got)
	}
}
