package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/capitan"
)

// CorpusSource identifies the local knowledge base as the origin of
// truth corpus items.
const CorpusSource = "LocalKnowledgeVector"

// CorpusItem is a single piece of grounding evidence for a claim.
type CorpusItem struct {
	Snippet   string
	Source    string
	Relevance float64
}

// Vectorizer grounds claims against a procedurally generated knowledge base.
// It builds a word-level trie over the generated statements for exact phrase
// lookups and a token index for containment search.
type Vectorizer struct {
	trie       *Trie
	vectors    []KnowledgeVector
	tokenIndex map[string][]int
	stats      GenerationStats
}

// NewVectorizer generates a knowledge base with the given factory and
// indexes it. A nil factory uses a fresh time-seeded one; a non-positive
// target uses DefaultCorpusSize.
func NewVectorizer(ctx context.Context, factory *Factory, target int) (*Vectorizer, error) {
	if factory == nil {
		factory = NewFactory()
	}

	vectors, stats, err := factory.Generate(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("knowledge base generation failed: %w", err)
	}

	v := &Vectorizer{
		trie:       NewTrie(),
		vectors:    vectors,
		tokenIndex: make(map[string][]int),
		stats:      stats,
	}
	v.build(ctx)

	return v, nil
}

// build inserts every knowledge vector into the trie and records each token
// in the containment index. Index tokens are normalized so that a
// sentence-final word ("...market volatility.") matches its bare form.
func (v *Vectorizer) build(ctx context.Context) {
	for i, vec := range v.vectors {
		tokens := Tokenize(vec.Text)
		v.trie.Insert(tokens, vec.Text)

		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			token = normalizeToken(token)
			if token == "" {
				continue
			}
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			v.tokenIndex[token] = append(v.tokenIndex[token], i)
		}
	}

	metrics := v.trie.Metrics()
	capitan.Emit(ctx, TrieBuilt,
		FieldVectorCount.Field(len(v.vectors)),
		FieldNodeCount.Field(metrics.TotalNodes),
	)
}

// FetchTruthCorpus retrieves the grounding evidence for a claim: every
// knowledge vector containing the claim's first token. Each item carries a
// relevance score - the fraction of claim tokens present in the snippet.
// An empty claim yields an empty corpus.
func (v *Vectorizer) FetchTruthCorpus(claim string) []CorpusItem {
	probeTokens := Tokenize(claim)
	if len(probeTokens) == 0 {
		return nil
	}

	indices := v.tokenIndex[normalizeToken(probeTokens[0])]
	if len(indices) == 0 {
		return nil
	}

	results := make([]CorpusItem, 0, len(indices))
	for _, idx := range indices {
		snippet := v.vectors[idx].Text
		results = append(results, CorpusItem{
			Snippet:   snippet,
			Source:    CorpusSource,
			Relevance: relevance(probeTokens, snippet),
		})
	}

	return results
}

// Lookup reports whether the exact statement exists in the knowledge base.
func (v *Vectorizer) Lookup(text string) (string, bool) {
	return v.trie.Contains(Tokenize(text))
}

// KnowledgeBase returns the generated knowledge vectors.
func (v *Vectorizer) KnowledgeBase() []KnowledgeVector {
	return v.vectors
}

// Trie returns the underlying knowledge trie.
func (v *Vectorizer) Trie() *Trie {
	return v.trie
}

// Stats returns the generation statistics for the knowledge base.
func (v *Vectorizer) Stats() GenerationStats {
	return v.stats
}

// Tokenize lowercases and splits text into whitespace-delimited tokens.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// normalizeToken strips surrounding punctuation so "volatility." and
// "volatility" compare equal during containment matching.
func normalizeToken(token string) string {
	return strings.Trim(token, ".,;:!?\"'")
}

// relevance is the fraction of probe tokens that appear in the snippet,
// compared in normalized form.
func relevance(probeTokens []string, snippet string) float64 {
	snippetTokens := Tokenize(snippet)
	set := make(map[string]struct{}, len(snippetTokens))
	for _, token := range snippetTokens {
		set[normalizeToken(token)] = struct{}{}
	}

	matched := 0
	for _, token := range probeTokens {
		if _, ok := set[normalizeToken(token)]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(probeTokens))
}
