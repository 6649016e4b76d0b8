package probe

// Default configuration for the semantic probe engine.
// These can be overridden per-component using builder methods.
var (
	// DefaultCorpusSize is the number of knowledge vectors the procedural
	// factory generates when no explicit target is given.
	DefaultCorpusSize = 500

	// DefaultGraphDepth is the number of Markov transitions in a generated
	// knowledge graph.
	DefaultGraphDepth = 3

	// DefaultSeekLimit is the maximum number of findings returned by a
	// semantic search when no explicit limit is given.
	DefaultSeekLimit = 10
)

const (
	// maxAttemptFactor bounds factory generation at factor*target attempts
	// so a saturated vocabulary cannot loop forever.
	maxAttemptFactor = 5

	// alignmentScale divides the raw alignment score before the sigmoid.
	alignmentScale = 10.0

	// zClampMin and zClampMax bound the sigmoid input.
	zClampMin = 0.0
	zClampMax = 5.0

	// Classification thresholds for confidence percentages.
	thresholdHigh   = 75.0
	thresholdMedium = 50.0
)

// Confidence classifications.
const (
	ClassificationHigh   = "HIGH"
	ClassificationMedium = "MEDIUM"
	ClassificationLow    = "LOW"
)
