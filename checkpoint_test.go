package probe

import (
	"context"
	"testing"
)

func TestCheckpointCreatesSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test claim")
	p.SetContent(ctx, "evidence", "original value", "test")

	checkpoint := NewCheckpoint("save_point")
	snapshot, err := checkpoint.Process(ctx, p)
	if err != nil {
		t.Fatalf("checkpoint failed: %v", err)
	}

	if snapshot.ID == p.ID {
		t.Error("checkpoint should create a new probe")
	}
	if snapshot.TraceID == p.TraceID {
		t.Error("checkpoint should assign a fresh trace ID")
	}
	if snapshot.ParentID == nil || *snapshot.ParentID != p.ID {
		t.Error("checkpoint should set ParentID to original probe")
	}
	if snapshot.Claim != p.Claim {
		t.Error("checkpoint should carry the claim forward")
	}
}

func TestCheckpointCopiesFindings(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	p.SetFinding(ctx, "key1", "value1", "test", map[string]string{"meta": "a"})
	p.SetContent(ctx, "key2", "value2", "test")

	checkpoint := NewCheckpoint("save_point")
	snapshot, err := checkpoint.Process(ctx, p)
	if err != nil {
		t.Fatalf("checkpoint failed: %v", err)
	}

	if len(snapshot.AllFindings()) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(snapshot.AllFindings()))
	}

	finding, ok := snapshot.GetFinding("key1")
	if !ok {
		t.Fatal("expected key1 in snapshot")
	}
	if finding.Metadata["meta"] != "a" {
		t.Errorf("expected metadata carried over, got %q", finding.Metadata["meta"])
	}

	// Metadata maps must be independent copies
	finding.Metadata["meta"] = "mutated"
	original, _ := p.GetFinding("key1")
	if original.Metadata["meta"] != "a" {
		t.Error("snapshot metadata must not alias the original")
	}
}

func TestCheckpointCopiesEmbeddings(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	if err := p.AddFinding(ctx, Finding{
		Key:       "vec",
		Content:   "embedded",
		Source:    "test",
		Embedding: Vector{0.5, -0.5},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot, err := NewCheckpoint("save_point").Process(ctx, p)
	if err != nil {
		t.Fatalf("checkpoint failed: %v", err)
	}

	// Embeddings must be independent copies, same as metadata
	copied, _ := snapshot.GetFinding("vec")
	copied.Embedding[0] = 99
	original, _ := p.GetFinding("vec")
	if original.Embedding[0] != 0.5 {
		t.Error("snapshot embedding must not alias the original")
	}
}

func TestCheckpointPersistsSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	p.SetContent(ctx, "key", "value", "test")

	checkpoint := NewCheckpoint("save_point")
	snapshot, err := checkpoint.Process(ctx, p)
	if err != nil {
		t.Fatalf("checkpoint failed: %v", err)
	}

	loaded, err := mem.GetProbe(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("expected snapshot in memory: %v", err)
	}
	if loaded.TraceID != snapshot.TraceID {
		t.Errorf("expected trace %q, got %q", snapshot.TraceID, loaded.TraceID)
	}

	findings, err := mem.GetFindings(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Errorf("expected 1 persisted finding, got %d", len(findings))
	}
}
