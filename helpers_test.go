package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/pipz"
)

func TestDo(t *testing.T) {
	p := newTestProbe("test")
	p.SetContent(context.Background(), "input", "test value", "test")

	processor := Do("custom-logic", func(ctx context.Context, pr *Probe) (*Probe, error) {
		input, _ := pr.GetContent("input")
		pr.SetContent(ctx, "output", input+" processed", "custom-logic")
		return pr, nil
	})

	result, err := processor.Process(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output, err := result.GetContent("output")
	if err != nil {
		t.Fatalf("unexpected error getting output: %v", err)
	}

	expected := "test value processed"
	if output != expected {
		t.Errorf("expected %q, got %q", expected, output)
	}
}

func TestDoWithError(t *testing.T) {
	p := newTestProbe("test")

	processor := Do("failing-logic", func(ctx context.Context, pr *Probe) (*Probe, error) {
		return pr, errors.New("intentional error")
	})

	_, err := processor.Process(context.Background(), p)
	if err == nil {
		t.Error("expected error from Do processor")
	}

	// pipz wraps errors, so just check that the error contains our message
	if err.Error() == "" {
		t.Error("expected non-empty error message")
	}
}

func TestTransform(t *testing.T) {
	p := newTestProbe("test")
	p.SetContent(context.Background(), "count", "5", "test")

	processor := Transform("increment", func(ctx context.Context, pr *Probe) *Probe {
		count, _ := pr.GetInt("count")
		pr.SetContent(ctx, "count", string(rune('0'+count+1)), "increment")
		return pr
	})

	result, err := processor.Process(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := result.GetContent("count")
	if err != nil {
		t.Fatalf("unexpected error getting count: %v", err)
	}

	if count != "6" {
		t.Errorf("expected %q, got %q", "6", count)
	}
}

func TestEffect(t *testing.T) {
	p := newTestProbe("test")

	observed := ""
	processor := Effect("observe", func(ctx context.Context, pr *Probe) error {
		observed = pr.Claim
		return nil
	})

	result, err := processor.Process(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if observed != "test" {
		t.Errorf("expected effect to observe claim, got %q", observed)
	}
	if len(result.AllFindings()) != 0 {
		t.Error("expected effect not to modify the probe")
	}
}

func TestSequence(t *testing.T) {
	p := newTestProbe("test")

	pipeline := Sequence("two-steps",
		Do("first", func(ctx context.Context, pr *Probe) (*Probe, error) {
			pr.SetContent(ctx, "first", "done", "first")
			return pr, nil
		}),
		Do("second", func(ctx context.Context, pr *Probe) (*Probe, error) {
			pr.SetContent(ctx, "second", "done", "second")
			return pr, nil
		}),
	)

	result, err := pipeline.Process(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := result.GetFinding("first"); !ok {
		t.Error("expected first finding")
	}
	if _, ok := result.GetFinding("second"); !ok {
		t.Error("expected second finding")
	}
}

func TestFilter(t *testing.T) {
	ctx := context.Background()

	mark := Do("mark", func(ctx context.Context, pr *Probe) (*Probe, error) {
		pr.SetContent(ctx, "marked", "true", "mark")
		return pr, nil
	})

	pass := Filter("maybe-mark", func(_ context.Context, pr *Probe) bool {
		return pr.Claim == "match"
	}, mark)

	matching := newTestProbe("match")
	result, err := pass.Process(ctx, matching)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.GetFinding("marked"); !ok {
		t.Error("expected matching probe to be processed")
	}

	other := newTestProbe("no match")
	result, err = pass.Process(ctx, other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.GetFinding("marked"); ok {
		t.Error("expected non-matching probe to pass through")
	}
}

func TestSwitch(t *testing.T) {
	ctx := context.Background()

	router := Switch("confidence-router", func(_ context.Context, pr *Probe) string {
		class, _ := pr.GetMetadata(KeyConfidence, "classification")
		return class
	})
	router.AddRoute(ClassificationLow, Do("escalate", func(ctx context.Context, pr *Probe) (*Probe, error) {
		pr.SetContent(ctx, "escalated", "true", "escalate")
		return pr, nil
	}))

	p := newTestProbe("test")
	p.SetFinding(ctx, KeyConfidence, "10.00", "score-confidence", map[string]string{
		"classification": ClassificationLow,
	})

	result, err := router.Process(ctx, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.GetFinding("escalated"); !ok {
		t.Error("expected LOW classification to route to escalation")
	}
}

func TestFallback(t *testing.T) {
	p := newTestProbe("test")

	failing := Do("primary", func(ctx context.Context, pr *Probe) (*Probe, error) {
		return pr, errors.New("primary down")
	})
	backup := Do("backup", func(ctx context.Context, pr *Probe) (*Probe, error) {
		pr.SetContent(ctx, "served-by", "backup", "backup")
		return pr, nil
	})

	fallback := Fallback("resilient", failing, backup)
	result, err := fallback.Process(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	servedBy, _ := result.GetContent("served-by")
	if servedBy != "backup" {
		t.Errorf("expected backup to serve, got %q", servedBy)
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	p := newTestProbe("test")

	attempts := 0
	flaky := Do("flaky", func(ctx context.Context, pr *Probe) (*Probe, error) {
		attempts++
		if attempts < 3 {
			return pr, errors.New("transient")
		}
		return pr, nil
	})

	retry := Retry("persistent", flaky, 5)
	if _, err := retry.Process(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestHandleObservesFailure(t *testing.T) {
	p := newTestProbe("test")

	var handled bool
	failing := Do("always-fails", func(ctx context.Context, pr *Probe) (*Probe, error) {
		return pr, errors.New("boom")
	})
	observer := pipz.Effect(pipz.Name("observer"), func(_ context.Context, _ *pipz.Error[*Probe]) error {
		handled = true
		return nil
	})

	handle := Handle("monitored", failing, observer)
	if _, err := handle.Process(context.Background(), p); err == nil {
		t.Error("expected error to propagate through Handle")
	}
	if !handled {
		t.Error("expected error handler to observe the failure")
	}
}
