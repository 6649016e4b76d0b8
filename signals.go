package probe

import "github.com/zoobzio/capitan"

// Signal definitions for semantic probe events.
// Signals follow the pattern: probe.<entity>.<event>.
var (
	// Probe lifecycle signals.
	ProbeCreated = capitan.NewSignal(
		"probe.probe.created",
		"New semantic probe initiated with claim and trace ID",
	)
	ProbeCompleted = capitan.NewSignal(
		"probe.probe.completed",
		"Semantic probe pipeline finished with a confidence score",
	)

	// Stage execution signals.
	StageStarted = capitan.NewSignal(
		"probe.stage.started",
		"Pipeline stage began execution",
	)
	StageCompleted = capitan.NewSignal(
		"probe.stage.completed",
		"Pipeline stage finished successfully",
	)
	StageFailed = capitan.NewSignal(
		"probe.stage.failed",
		"Pipeline stage encountered an error",
	)

	// Finding management signals.
	FindingAdded = capitan.NewSignal(
		"probe.finding.added",
		"New finding recorded on probe context",
	)

	// Search signals.
	SeekResultsFound = capitan.NewSignal(
		"probe.seek.results",
		"Semantic search located matching findings",
	)

	// Knowledge base signals.
	CorpusGenerated = capitan.NewSignal(
		"probe.corpus.generated",
		"Procedural factory finished generating knowledge vectors",
	)
	TrieBuilt = capitan.NewSignal(
		"probe.trie.built",
		"Knowledge trie constructed from generated vectors",
	)
	GraphGenerated = capitan.NewSignal(
		"probe.graph.generated",
		"Markov knowledge graph generated for a claim",
	)
)

// Field keys for probe event data.
var (
	// Probe metadata.
	FieldClaim        = capitan.NewStringKey("claim")
	FieldTraceID      = capitan.NewStringKey("trace_id")
	FieldFindingCount = capitan.NewIntKey("finding_count")
	FieldStageCount   = capitan.NewIntKey("stage_count")

	// Stage metadata.
	FieldStageName = capitan.NewStringKey("stage_name")
	FieldStageType = capitan.NewStringKey("stage_type") // corpus, score, graph, recall, seek, forget

	// Finding metadata.
	FieldFindingKey    = capitan.NewStringKey("finding_key")
	FieldFindingSource = capitan.NewStringKey("finding_source")
	FieldContentSize   = capitan.NewIntKey("content_size") // character count

	// Knowledge base metrics.
	FieldVectorCount = capitan.NewIntKey("vector_count")
	FieldAttempts    = capitan.NewIntKey("attempts")
	FieldNodeCount   = capitan.NewIntKey("node_count")
	FieldCorpusSize  = capitan.NewIntKey("corpus_size")
	FieldGraphDepth  = capitan.NewIntKey("graph_depth")

	// Scoring metrics.
	FieldConfidence     = capitan.NewFloat32Key("confidence")
	FieldClassification = capitan.NewStringKey("classification")

	// Search metadata.
	FieldSearchQuery = capitan.NewStringKey("search_query")
	FieldSearchLimit = capitan.NewIntKey("search_limit")
	FieldResultCount = capitan.NewIntKey("result_count")

	// Timing.
	FieldStageDuration = capitan.NewDurationKey("stage_duration")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)
