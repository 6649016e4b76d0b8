package probe

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// -----------------------------------------------------------------------------
// Adapter Functions - wrap functions to create Probe processors
// -----------------------------------------------------------------------------

// Do creates a processor from a custom function that can fail.
// This is the easiest way to add custom logic to a pipeline.
//
// Example:
//
//	flag := probe.Do("flag-low-relevance", func(ctx context.Context, p *probe.Probe) (*probe.Probe, error) {
//	    relevance, _ := p.GetMetadata(probe.KeyTruthCorpus, "mean_relevance")
//	    if relevance == "0.0000" {
//	        p.SetContent(ctx, "flagged", "true", "flag-low-relevance")
//	    }
//	    return p, nil
//	})
func Do(name string, fn func(context.Context, *Probe) (*Probe, error)) pipz.Processor[*Probe] {
	return pipz.Apply(pipz.Name(name), fn)
}

// Transform creates a processor from a pure transformation function.
// Use this when your operation cannot fail.
func Transform(name string, fn func(context.Context, *Probe) *Probe) pipz.Processor[*Probe] {
	return pipz.Transform(pipz.Name(name), fn)
}

// Effect creates a processor that performs a side effect without modifying
// the probe. Use this for logging, metrics, or other observational work.
func Effect(name string, fn func(context.Context, *Probe) error) pipz.Processor[*Probe] {
	return pipz.Effect(pipz.Name(name), fn)
}

// Mutate creates a processor that conditionally modifies a probe.
// The modification is only applied if the predicate returns true.
func Mutate(name string, fn func(context.Context, *Probe) *Probe, predicate func(context.Context, *Probe) bool) pipz.Processor[*Probe] {
	return pipz.Mutate(pipz.Name(name), fn, predicate)
}

// Enrich creates a processor that optionally enhances a probe.
// Unlike Do, errors are logged but don't stop the pipeline.
func Enrich(name string, fn func(context.Context, *Probe) (*Probe, error)) pipz.Processor[*Probe] {
	return pipz.Enrich(pipz.Name(name), fn)
}

// -----------------------------------------------------------------------------
// Sequential Connectors - process probes in order
// -----------------------------------------------------------------------------

// Sequence creates a sequential pipeline of probe processors.
// Each processor receives the output of the previous one.
//
// Example:
//
//	pipeline := probe.Sequence("semantic-probe",
//	    probe.NewFetchCorpus("fetch-corpus", vectorizer),
//	    probe.NewConfidence("score-confidence", nil),
//	)
func Sequence(name string, processors ...pipz.Chainable[*Probe]) *pipz.Sequence[*Probe] {
	return pipz.NewSequence(pipz.Name(name), processors...)
}

// -----------------------------------------------------------------------------
// Control Flow Connectors - route probes based on conditions
// -----------------------------------------------------------------------------

// Filter creates a conditional processor that either processes or passes through.
// When the predicate returns true, the processor is executed.
// When false, the probe passes through unchanged.
func Filter(name string, predicate func(context.Context, *Probe) bool, processor pipz.Chainable[*Probe]) *pipz.Filter[*Probe] {
	return pipz.NewFilter(pipz.Name(name), predicate, processor)
}

// Switch creates a router that directs probes to different processors.
// The condition function returns a route key that determines which processor
// handles the probe.
//
// Example:
//
//	router := probe.Switch("confidence-router", func(ctx context.Context, p *probe.Probe) string {
//	    class, _ := p.GetMetadata(probe.KeyConfidence, "classification")
//	    return class
//	})
//	router.AddRoute(probe.ClassificationLow, escalationHandler)
func Switch[K comparable](name string, condition func(context.Context, *Probe) K) *pipz.Switch[*Probe, K] {
	return pipz.NewSwitch(pipz.Name(name), condition)
}

// -----------------------------------------------------------------------------
// Error Handling Connectors - handle failures gracefully
// -----------------------------------------------------------------------------

// Fallback creates a processor that tries alternatives on failure.
// Each processor is tried in order until one succeeds.
func Fallback(name string, processors ...pipz.Chainable[*Probe]) *pipz.Fallback[*Probe] {
	return pipz.NewFallback(pipz.Name(name), processors...)
}

// Retry creates a processor that retries on failure up to maxAttempts times.
// Immediate retry without delay - for backoff, use Backoff instead.
func Retry(name string, processor pipz.Chainable[*Probe], maxAttempts int) *pipz.Retry[*Probe] {
	return pipz.NewRetry(pipz.Name(name), processor, maxAttempts)
}

// Backoff creates a processor that retries with exponential backoff.
func Backoff(name string, processor pipz.Chainable[*Probe], maxAttempts int, baseDelay time.Duration) *pipz.Backoff[*Probe] {
	return pipz.NewBackoff(pipz.Name(name), processor, maxAttempts, baseDelay)
}

// Timeout creates a processor that enforces a time limit on execution.
// If the timeout expires, the operation is canceled and an error is returned.
func Timeout(name string, processor pipz.Chainable[*Probe], duration time.Duration) *pipz.Timeout[*Probe] {
	return pipz.NewTimeout(pipz.Name(name), processor, duration)
}

// Handle creates a processor that handles errors without stopping the pipeline.
// When the primary processor fails, the error handler is invoked for monitoring.
// The error handler receives a pipz.Error[*Probe] with full error context.
func Handle(name string, processor pipz.Chainable[*Probe], errorHandler pipz.Chainable[*pipz.Error[*Probe]]) *pipz.Handle[*Probe] {
	return pipz.NewHandle(pipz.Name(name), processor, errorHandler)
}

// -----------------------------------------------------------------------------
// Resource Protection Connectors - protect system resources
// -----------------------------------------------------------------------------

// RateLimiter creates a processor that enforces rate limits.
func RateLimiter(name string, requestsPerSecond float64, burst int) *pipz.RateLimiter[*Probe] {
	return pipz.NewRateLimiter[*Probe](pipz.Name(name), requestsPerSecond, burst)
}

// CircuitBreaker creates a processor that prevents cascade failures.
// Opens the circuit after failureThreshold consecutive failures.
func CircuitBreaker(name string, processor pipz.Chainable[*Probe], failureThreshold int, resetTimeout time.Duration) *pipz.CircuitBreaker[*Probe] {
	return pipz.NewCircuitBreaker(pipz.Name(name), processor, failureThreshold, resetTimeout)
}

// -----------------------------------------------------------------------------
// Parallel Connectors - process probes concurrently
// These require *Probe to implement pipz.Cloner[*Probe] (see probe.go Clone())
// -----------------------------------------------------------------------------

// Concurrent runs all processors in parallel and returns the original probe.
// Each processor receives an isolated clone. Use the reducer to aggregate results.
func Concurrent(name string, reducer func(original *Probe, results map[pipz.Name]*Probe, errors map[pipz.Name]error) *Probe, processors ...pipz.Chainable[*Probe]) *pipz.Concurrent[*Probe] {
	return pipz.NewConcurrent(pipz.Name(name), reducer, processors...)
}

// Race runs all processors in parallel and returns the first successful result.
func Race(name string, processors ...pipz.Chainable[*Probe]) *pipz.Race[*Probe] {
	return pipz.NewRace(pipz.Name(name), processors...)
}

// WorkerPool creates a bounded parallel executor with a fixed number of workers.
func WorkerPool(name string, workers int, processors ...pipz.Chainable[*Probe]) *pipz.WorkerPool[*Probe] {
	return pipz.NewWorkerPool(pipz.Name(name), workers, processors...)
}
