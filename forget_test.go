package probe

import (
	"context"
	"testing"
)

func TestForgetCreatesNewProbe(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test claim")
	p.SetContent(ctx, "key1", "value1", "test")

	originalID := p.ID

	forget := NewForget("clean")
	child, err := forget.Process(ctx, p)
	if err != nil {
		t.Fatalf("forget failed: %v", err)
	}

	if child.ID == originalID {
		t.Error("forget should create new probe with different ID")
	}
	if child.TraceID == p.TraceID {
		t.Error("forget should assign a fresh trace ID")
	}
	if child.Claim != p.Claim {
		t.Error("forget should carry the claim forward")
	}
	if child.ParentID == nil || *child.ParentID != originalID {
		t.Error("forget should set ParentID to original probe")
	}
}

func TestForgetCopiesAllFindingsByDefault(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	p.SetContent(ctx, "key1", "value1", "test")
	p.SetContent(ctx, "key2", "value2", "test")
	p.SetContent(ctx, "key3", "value3", "test")

	forget := NewForget("clean")
	child, err := forget.Process(ctx, p)
	if err != nil {
		t.Fatalf("forget failed: %v", err)
	}

	if len(child.AllFindings()) != 3 {
		t.Errorf("expected 3 findings, got %d", len(child.AllFindings()))
	}
}

func TestForgetWithDropKeys(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	p.SetContent(ctx, "keep1", "value1", "test")
	p.SetContent(ctx, "drop1", "value2", "test")
	p.SetContent(ctx, "keep2", "value3", "test")
	p.SetContent(ctx, "drop2", "value4", "test")

	forget := NewForget("clean").WithDropKeys("drop1", "drop2")
	child, err := forget.Process(ctx, p)
	if err != nil {
		t.Fatalf("forget failed: %v", err)
	}

	if len(child.AllFindings()) != 2 {
		t.Errorf("expected 2 findings, got %d", len(child.AllFindings()))
	}

	if _, ok := child.GetFinding("keep1"); !ok {
		t.Error("should have keep1")
	}
	if _, ok := child.GetFinding("keep2"); !ok {
		t.Error("should have keep2")
	}
	if _, ok := child.GetFinding("drop1"); ok {
		t.Error("should not have drop1")
	}
	if _, ok := child.GetFinding("drop2"); ok {
		t.Error("should not have drop2")
	}
}

func TestForgetWithKeepKeys(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	p.SetContent(ctx, "keep", "value1", "test")
	p.SetContent(ctx, "other1", "value2", "test")
	p.SetContent(ctx, "other2", "value3", "test")

	forget := NewForget("clean").WithKeepKeys("keep")
	child, err := forget.Process(ctx, p)
	if err != nil {
		t.Fatalf("forget failed: %v", err)
	}

	if len(child.AllFindings()) != 1 {
		t.Errorf("expected 1 finding, got %d", len(child.AllFindings()))
	}
	if _, ok := child.GetFinding("keep"); !ok {
		t.Error("should have keep")
	}
}

func TestForgetKeepKeysPrecedence(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	p.SetContent(ctx, "both", "value1", "test")
	p.SetContent(ctx, "other", "value2", "test")

	// Keep wins when a key is named in both filters
	forget := NewForget("clean").WithDropKeys("both").WithKeepKeys("both")
	child, err := forget.Process(ctx, p)
	if err != nil {
		t.Fatalf("forget failed: %v", err)
	}

	if _, ok := child.GetFinding("both"); !ok {
		t.Error("keep keys should take precedence over drop keys")
	}
	if _, ok := child.GetFinding("other"); ok {
		t.Error("keys outside keep set should be dropped")
	}
}

func TestForgetCopiesEmbeddings(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	if err := p.AddFinding(ctx, Finding{
		Key:       "vec",
		Content:   "embedded",
		Source:    "test",
		Embedding: Vector{0.25, 0.75},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child, err := NewForget("clean").Process(ctx, p)
	if err != nil {
		t.Fatalf("forget failed: %v", err)
	}

	copied, _ := child.GetFinding("vec")
	copied.Embedding[0] = 99
	original, _ := p.GetFinding("vec")
	if original.Embedding[0] != 0.25 {
		t.Error("child embedding must not alias the original")
	}
}

func TestForgetPreservesOriginal(t *testing.T) {
	ctx := context.Background()
	mem := NewEphemeralMemory()
	p, _ := NewProbe(ctx, mem, "test")
	p.SetContent(ctx, "key1", "value1", "test")
	p.SetContent(ctx, "key2", "value2", "test")

	forget := NewForget("clean").WithDropKeys("key1")
	_, err := forget.Process(ctx, p)
	if err != nil {
		t.Fatalf("forget failed: %v", err)
	}

	// Original keeps everything
	if len(p.AllFindings()) != 2 {
		t.Errorf("expected original to keep 2 findings, got %d", len(p.AllFindings()))
	}
}
