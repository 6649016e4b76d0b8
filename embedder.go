package probe

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector dimensions produced by this embedder.
	Dimensions() int
}

// ErrNoEmbedder is returned when no embedder is configured.
var ErrNoEmbedder = fmt.Errorf("no embedder configured")

// Global embedder state.
var (
	globalEmbedder   Embedder
	globalEmbedderMu sync.RWMutex
)

// SetEmbedder sets the global embedder instance.
func SetEmbedder(e Embedder) {
	globalEmbedderMu.Lock()
	defer globalEmbedderMu.Unlock()
	globalEmbedder = e
}

// GetEmbedder returns the global embedder instance.
func GetEmbedder() Embedder {
	globalEmbedderMu.RLock()
	defer globalEmbedderMu.RUnlock()
	return globalEmbedder
}

// embedderKey is the context key for embedder.
type embedderKey struct{}

// WithEmbedder returns a context with the given embedder.
func WithEmbedder(ctx context.Context, e Embedder) context.Context {
	return context.WithValue(ctx, embedderKey{}, e)
}

// EmbedderFromContext retrieves the embedder from context, if present.
func EmbedderFromContext(ctx context.Context) (Embedder, bool) {
	e, ok := ctx.Value(embedderKey{}).(Embedder)
	return e, ok
}

// ResolveEmbedder determines which embedder to use based on resolution order:
// 1. Explicit embedder (passed as argument)
// 2. Context embedder
// 3. Global embedder
// Returns ErrNoEmbedder if none is available.
func ResolveEmbedder(ctx context.Context, explicit Embedder) (Embedder, error) {
	if explicit != nil {
		return explicit, nil
	}

	if e, ok := EmbedderFromContext(ctx); ok {
		return e, nil
	}

	if e := GetEmbedder(); e != nil {
		return e, nil
	}

	return nil, ErrNoEmbedder
}

// EntropyEmbedderDimensions is the fixed dimensionality of entropy embeddings.
// A SHA-256 digest folds evenly into 16 two-byte lanes.
const EntropyEmbedderDimensions = 16

// EntropyEmbedder produces deterministic embeddings derived from a SHA-256
// content digest. Identical text always embeds to the identical vector, and
// distinct text diverges with the hash, which is what uniqueness checks and
// similarity ordering over procedurally generated vectors need. No network
// access and no model weights are involved.
type EntropyEmbedder struct{}

// NewEntropyEmbedder creates a deterministic hash-based embedder.
func NewEntropyEmbedder() *EntropyEmbedder {
	return &EntropyEmbedder{}
}

// Embed generates the entropy embedding for the given text.
func (e *EntropyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	digest := sha256.Sum256([]byte(text))

	vec := make([]float32, EntropyEmbedderDimensions)
	for i := 0; i < EntropyEmbedderDimensions; i++ {
		lane := binary.BigEndian.Uint16(digest[i*2 : i*2+2])
		// Normalize each lane into [-1, 1].
		vec[i] = float32(lane)/32767.5 - 1.0
	}

	return vec, nil
}

// Dimensions returns the vector dimensions produced by this embedder.
func (e *EntropyEmbedder) Dimensions() int {
	return EntropyEmbedderDimensions
}
