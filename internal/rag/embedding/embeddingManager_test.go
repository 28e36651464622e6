package embedding

import (
	"context"
	"errors"
	"testing"
)

type countingEmbedder struct {
	calls int
	fail  bool
	short bool
}

func (c *countingEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1}, nil
}

func (c *countingEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	c.calls++
	if c.fail {
		return nil, errors.New("quota")
	}
	n := len(chunks)
	if c.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(len(chunks[i]))}
	}
	return out, nil
}

func TestEmbedAll_Batches(t *testing.T) {
	texts := make([]string, 250)
	for i := range texts {
		texts[i] = "text"
	}
	e := &countingEmbedder{}

	vectors, err := EmbedAll(context.Background(), e, texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.calls != 3 {
		t.Errorf("expected 3 batches, got %d", e.calls)
	}
	if len(vectors) != 250 {
		t.Errorf("expected 250 vectors, got %d", len(vectors))
	}
}

func TestEmbedAll_Errors(t *testing.T) {
	if _, err := EmbedAll(context.Background(), &countingEmbedder{fail: true}, []string{"a"}); err == nil {
		t.Error("expected provider error to be returned")
	}
	if _, err := EmbedAll(context.Background(), &countingEmbedder{short: true}, []string{"a", "b"}); err == nil {
		t.Error("expected error when provider returns too few vectors")
	}
}

func TestEmbedAll_Empty(t *testing.T) {
	e := &countingEmbedder{}
	vectors, err := EmbedAll(context.Background(), e, nil)
	if err != nil || len(vectors) != 0 || e.calls != 0 {
		t.Errorf("unexpected result %v %v calls=%d", vectors, err, e.calls)
	}
}
