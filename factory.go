package probe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
)

// KnowledgeVector is a single procedurally generated knowledge statement.
type KnowledgeVector struct {
	// ID is a deterministic content identifier: "VEC-" plus the first
	// 8 hex characters of the SHA-256 digest, uppercased.
	ID string

	// Text is the generated statement.
	Text string

	// EntropyHash is the full SHA-256 digest of the text, used for
	// uniqueness checks.
	EntropyHash string

	// Embedding is the deterministic entropy embedding of the text.
	Embedding Vector
}

// GenerationStats reports the outcome of a factory generation run.
type GenerationStats struct {
	TargetSize        int
	ActualSize        int
	Attempts          int
	UniqueHashes      int
	Elapsed           time.Duration
	AvgSentenceLength float64
}

// Factory generates high-entropy knowledge vectors at runtime from a fixed
// vocabulary. Generation is combinatorial: a subject, verb, and object are
// drawn per attempt, and every third attempt produces a compound sentence
// with a "precisely when" clause. Uniqueness is enforced by content hash.
//
// The factory replaces any static corpus file - the knowledge base exists
// only as the output of a generation run.
type Factory struct {
	subjects []string
	verbs    []string
	objects  []string

	rng      *rand.Rand
	embedder Embedder
}

// Scientific/geopolitical vocabulary for procedural statement generation.
var (
	defaultSubjects = []string{
		"Quantum decoherence", "Biometric entropy", "Algorithmic bias",
		"Geopolitical flux", "Neuronal plasticity", "Homomorphic encryption",
		"Zero-knowledge proof", "Hyper-ledger consensus", "Tachyon resonance",
		"Dark matter topology", "Fiscal asymmetry", "Kinetic cyber-warfare",
	}

	defaultVerbs = []string{
		"accelerates", "diminishes", "correlates with", "amplifies",
		"modulates", "encodes", "obfuscates", "triangulates",
		"synthesizes", "decouples", "recursively indexes", "stochastically predicts",
	}

	defaultObjects = []string{
		"high-yield variance", "systemic latency", "cryptographic resilience",
		"socio-economic stratification", "cognitive load", "market volatility",
		"cyber-kinetic vectors", "asymptotic complexities", "recursive neural nets",
		"distributed ledger states", "macro-economic stability", "quantum supremacy",
	}
)

// NewFactory creates a factory with the default vocabulary and a
// time-seeded random source.
func NewFactory() *Factory {
	return &Factory{
		subjects: defaultSubjects,
		verbs:    defaultVerbs,
		objects:  defaultObjects,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		embedder: NewEntropyEmbedder(),
	}
}

// WithSeed replaces the random source with a seeded one for
// reproducible generation.
func (f *Factory) WithSeed(seed int64) *Factory {
	f.rng = rand.New(rand.NewSource(seed))
	return f
}

// WithEmbedder sets the embedder used for vector embeddings.
func (f *Factory) WithEmbedder(e Embedder) *Factory {
	f.embedder = e
	return f
}

// WithVocabulary replaces the subject/verb/object vocabulary.
// Empty slices keep the corresponding default list.
func (f *Factory) WithVocabulary(subjects, verbs, objects []string) *Factory {
	if len(subjects) > 0 {
		f.subjects = subjects
	}
	if len(verbs) > 0 {
		f.verbs = verbs
	}
	if len(objects) > 0 {
		f.objects = objects
	}
	return f
}

// VectorID computes the deterministic content identifier for a statement.
func VectorID(text string) string {
	digest := sha256.Sum256([]byte(text))
	return "VEC-" + strings.ToUpper(hex.EncodeToString(digest[:])[:8])
}

// EntropyHash computes the full content digest used for uniqueness checks.
func EntropyHash(text string) string {
	digest := sha256.Sum256([]byte(text))
	return hex.EncodeToString(digest[:])
}

// Generate produces up to target unique knowledge vectors. Attempts are
// capped at five times the target so a saturated vocabulary terminates with
// fewer vectors instead of looping forever.
func (f *Factory) Generate(ctx context.Context, target int) ([]KnowledgeVector, GenerationStats, error) {
	if target <= 0 {
		target = DefaultCorpusSize
	}

	start := time.Now()
	maxAttempts := target * maxAttemptFactor
	seen := make(map[string]struct{}, target)
	vectors := make([]KnowledgeVector, 0, target)

	attempts := 0
	totalWords := 0

	for len(vectors) < target && attempts < maxAttempts {
		attempts++

		sentence := f.compose(attempts)

		hash := EntropyHash(sentence)
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}

		vec := KnowledgeVector{
			ID:          VectorID(sentence),
			Text:        sentence,
			EntropyHash: hash,
		}

		if f.embedder != nil {
			embedding, err := f.embedder.Embed(ctx, sentence)
			if err != nil {
				return nil, GenerationStats{}, fmt.Errorf("failed to embed vector %s: %w", vec.ID, err)
			}
			vec.Embedding = embedding
		}

		vectors = append(vectors, vec)
		totalWords += len(strings.Fields(sentence))
	}

	stats := GenerationStats{
		TargetSize:   target,
		ActualSize:   len(vectors),
		Attempts:     attempts,
		UniqueHashes: len(seen),
		Elapsed:      time.Since(start),
	}
	if len(vectors) > 0 {
		stats.AvgSentenceLength = float64(totalWords) / float64(len(vectors))
	}

	capitan.Emit(ctx, CorpusGenerated,
		FieldVectorCount.Field(stats.ActualSize),
		FieldAttempts.Field(stats.Attempts),
	)

	return vectors, stats, nil
}

// compose builds a single statement. Every third attempt adds a conditional
// conjunction for sentence-structure density.
func (f *Factory) compose(attempt int) string {
	subj := f.subjects[f.rng.Intn(len(f.subjects))]
	verb := f.verbs[f.rng.Intn(len(f.verbs))]
	obj := f.objects[f.rng.Intn(len(f.objects))]

	if attempt%3 == 0 {
		secondary := f.objects[f.rng.Intn(len(f.objects))]
		secondaryVerb := f.verbs[f.rng.Intn(len(f.verbs))]
		return fmt.Sprintf("%s %s %s precisely when %s %s.", subj, verb, obj, secondary, secondaryVerb)
	}

	return fmt.Sprintf("%s %s %s.", subj, verb, obj)
}
