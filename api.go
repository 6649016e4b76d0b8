// Package probe provides an API-free semantic probe engine for Go.
//
// probe implements a Probe-Finding-Memory architecture for grounding claims
// against a procedurally generated knowledge base and scoring them with a
// sigmoid confidence function. No network access and no model weights are
// involved - every component computes locally.
//
// # Core Types
//
// The package is built around three core concepts:
//
//   - [Probe] - An evaluation context that accumulates evidence across pipeline stages
//   - [Finding] - Atomic units of evidence (key-value pairs with optional embeddings)
//   - [Memory] - Persistent storage with semantic search via entropy embeddings
//
// # Creating Probes
//
// Use [NewProbe] or [NewProbeWithTrace] to create probes:
//
//	p, err := probe.NewProbe(ctx, memory, "quantum decoherence accelerates market volatility")
//	p.SetContent(ctx, "context", supportingEvidence, "input")
//
// # Pipeline Stages
//
// probe provides the stages of the claim evaluation pipeline:
//
//   - [NewFetchCorpus] - Ground the claim against the knowledge trie
//   - [NewConfidence] - Sigmoid confidence scoring over the truth corpus
//   - [NewMarkovGraph] - Procedural knowledge graph generation
//
// Memory & Search:
//   - [NewRecall] - Load a prior probe and surface its findings
//   - [NewSeek] - Semantic search across findings
//   - [NewForget] - Branch a child probe with filtered findings
//   - [NewCheckpoint] - Snapshot the current probe for later restoration
//   - [NewRestore] - Branch from a previously checkpointed probe
//
// # Pipeline Helpers
//
// probe wraps pipz connectors for Probe processing:
//
//   - [Sequence] - Sequential execution
//   - [Filter] - Conditional execution
//   - [Switch] - Route to different processors
//   - [Fallback] - Try alternatives on failure
//   - [Retry] - Retry on failure
//   - [Backoff] - Retry with exponential backoff
//   - [Timeout] - Enforce time limits
//   - [Concurrent] - Run processors in parallel
//   - [Race] - Return first successful result
//
// # Engine
//
// [Engine] assembles the full pipeline and returns a [Result] per claim:
//
//	engine := probe.NewEngine(probe.NewEphemeralMemory())
//	result, err := engine.Execute(ctx, claim)
//
// # Embedder
//
// Embedding access uses a resolution hierarchy:
//
//  1. Explicit parameter (.WithEmbedder(e))
//  2. Context value (probe.WithEmbedder(ctx, e))
//  3. Global default (probe.SetEmbedder(e))
//
// The default [EntropyEmbedder] derives deterministic vectors from content
// hashes, so search works without any external embedding service.
//
// # Memory Implementations
//
// [SoyMemory] uses soy for PostgreSQL persistence with pgvector for
// semantic search:
//
//	memory, err := probe.NewSoyMemory(db)
//
// [EphemeralMemory] keeps everything in process memory for API-free runs.
//
// # Observability
//
// probe emits capitan signals throughout execution. See [signals.go] for
// the complete list of events including ProbeCreated, StageStarted,
// StageCompleted, StageFailed, FindingAdded, and CorpusGenerated.
package probe
