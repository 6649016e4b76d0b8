package probe

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/pipz"
)

func TestStageName(t *testing.T) {
	stage := NewMarkovGraph("my-graph", NewGraphGenerator().WithSeed(1), 2)

	if stage.Name() != pipz.Name("my-graph") {
		t.Errorf("expected name %q, got %q", "my-graph", stage.Name())
	}
}

func TestStageRecordsExecution(t *testing.T) {
	ctx := context.Background()
	p := newTestProbe("claim")

	stage := NewMarkovGraph("generate-graph", NewGraphGenerator().WithSeed(1), 2)
	result, err := stage.Process(ctx, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stages := result.Stages()
	if len(stages) != 1 {
		t.Fatalf("expected 1 stage record, got %d", len(stages))
	}
	if stages[0].Name != "generate-graph" {
		t.Errorf("expected name %q, got %q", "generate-graph", stages[0].Name)
	}
	if stages[0].Type != "graph" {
		t.Errorf("expected type %q, got %q", "graph", stages[0].Type)
	}
	if stages[0].Error != nil {
		t.Errorf("expected no error, got %v", stages[0].Error)
	}
	if stages[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestStageRecordsFailure(t *testing.T) {
	ctx := context.Background()
	p := newTestProbe("claim")

	// Confidence without a prior corpus finding fails
	stage := NewConfidence("score-confidence", nil)
	_, err := stage.Process(ctx, p)
	if err == nil {
		t.Fatal("expected error")
	}

	stages := p.Stages()
	if len(stages) != 1 {
		t.Fatalf("expected 1 stage record, got %d", len(stages))
	}
	if stages[0].Error == nil {
		t.Error("expected stage record to carry the error")
	}
}

func TestStageBuildErrorIsSticky(t *testing.T) {
	p := newTestProbe("claim")
	stage := NewFetchCorpus("fetch-corpus", nil)

	for i := 0; i < 2; i++ {
		if _, err := stage.Process(context.Background(), p); err == nil {
			t.Fatalf("attempt %d: expected build error", i)
		}
	}
}

func TestStageWithRetry(t *testing.T) {
	ctx := context.Background()
	p := newTestProbe("claim")

	stage := NewMarkovGraph("generate-graph", NewGraphGenerator().WithSeed(1), 2).
		WithRetry(3)

	result, err := stage.Process(ctx, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.GetFinding(KeyKnowledgeGraph); !ok {
		t.Error("expected graph finding through retry wrapper")
	}
}

func TestStageWithTimeout(t *testing.T) {
	ctx := context.Background()
	p := newTestProbe("claim")

	stage := NewMarkovGraph("generate-graph", NewGraphGenerator().WithSeed(1), 2).
		WithTimeout(5 * time.Second)

	result, err := stage.Process(ctx, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.GetFinding(KeyKnowledgeGraph); !ok {
		t.Error("expected graph finding through timeout wrapper")
	}
}

func TestStageWithBackoff(t *testing.T) {
	ctx := context.Background()
	p := newTestProbe("claim")

	stage := NewMarkovGraph("generate-graph", NewGraphGenerator().WithSeed(1), 2).
		WithBackoff(2, time.Millisecond)

	if _, err := stage.Process(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
