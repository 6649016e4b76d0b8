package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/pipz"
)

// KeyTruthCorpus is the finding key written by the corpus fetch stage.
const KeyTruthCorpus = "truth_corpus"

// corpusConfig implements stageConfig for truth corpus retrieval.
type corpusConfig struct {
	outputKey  string
	vectorizer *Vectorizer
}

// NewFetchCorpus creates a stage that grounds the probe's claim against the
// vectorizer's knowledge base.
//
// The stage writes a finding under KeyTruthCorpus: the content is the
// matching snippets joined by newlines, and the metadata records the corpus
// size and the mean relevance of the matches. An empty corpus writes an
// empty content with corpus_size "0".
func NewFetchCorpus(name string, vectorizer *Vectorizer) *Stage {
	return newStage(name, &corpusConfig{
		outputKey:  KeyTruthCorpus,
		vectorizer: vectorizer,
	})
}

func (c *corpusConfig) build(_ context.Context) (pipz.Chainable[*Probe], error) {
	if c.vectorizer == nil {
		return nil, fmt.Errorf("corpus stage requires a vectorizer")
	}

	return pipz.Apply(pipz.Name("fetch-corpus"), func(ctx context.Context, p *Probe) (*Probe, error) {
		items := c.vectorizer.FetchTruthCorpus(p.Claim)

		snippets := make([]string, len(items))
		meanRelevance := 0.0
		for i, item := range items {
			snippets[i] = item.Snippet
			meanRelevance += item.Relevance
		}
		if len(items) > 0 {
			meanRelevance /= float64(len(items))
		}

		metadata := map[string]string{
			"corpus_size":    strconv.Itoa(len(items)),
			"source":         CorpusSource,
			"mean_relevance": strconv.FormatFloat(meanRelevance, 'f', 4, 64),
		}

		if err := p.SetFinding(ctx, c.outputKey, strings.Join(snippets, "\n"), "fetch-corpus", metadata); err != nil {
			return p, fmt.Errorf("failed to record truth corpus: %w", err)
		}

		return p, nil
	}), nil
}

func (c *corpusConfig) stageType() string {
	return "corpus"
}

// CorpusFromFinding reconstructs corpus items from a truth corpus finding.
// Each non-empty line of the content is one snippet; relevance is recomputed
// against the claim.
func CorpusFromFinding(claim string, finding Finding) []CorpusItem {
	if finding.Content == "" {
		return nil
	}

	probeTokens := Tokenize(claim)
	lines := strings.Split(finding.Content, "\n")
	items := make([]CorpusItem, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		item := CorpusItem{
			Snippet: line,
			Source:  CorpusSource,
		}
		if len(probeTokens) > 0 {
			item.Relevance = relevance(probeTokens, line)
		}
		items = append(items, item)
	}

	return items
}
