package probe

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zoobzio/pipz"
)

// KeyConfidence is the finding key written by the confidence stage.
const KeyConfidence = "confidence"

// confidenceConfig implements stageConfig for statistical confidence scoring.
type confidenceConfig struct {
	outputKey string
	inputKey  string
	scorer    *Scorer
}

// NewConfidence creates a stage that scores the probe's claim against the
// truth corpus recorded by a previous corpus stage.
//
// The stage reads the finding under KeyTruthCorpus, computes the sigmoid
// confidence, and writes a finding under KeyConfidence: the content is the
// percentage formatted to two decimals, and the metadata carries the
// classification and the intermediate sigmoid metrics.
func NewConfidence(name string, scorer *Scorer) *Stage {
	if scorer == nil {
		scorer = NewScorer()
	}
	return newStage(name, &confidenceConfig{
		outputKey: KeyConfidence,
		inputKey:  KeyTruthCorpus,
		scorer:    scorer,
	})
}

func (c *confidenceConfig) build(_ context.Context) (pipz.Chainable[*Probe], error) {
	return pipz.Apply(pipz.Name("score-confidence"), func(ctx context.Context, p *Probe) (*Probe, error) {
		finding, ok := p.GetFinding(c.inputKey)
		if !ok {
			return p, fmt.Errorf("confidence stage requires a %q finding", c.inputKey)
		}

		corpus := CorpusFromFinding(p.Claim, finding)
		report := c.scorer.Confidence(p.Claim, corpus)

		metadata := map[string]string{
			"classification": report.Classification,
			"corpus_size":    strconv.Itoa(report.CorpusSize),
			"alignment":      strconv.FormatFloat(report.Metrics.RawAlignmentScore, 'f', -1, 64),
			"z":              strconv.FormatFloat(report.Metrics.NormalizedZ, 'f', -1, 64),
			"sigmoid":        strconv.FormatFloat(report.Metrics.SigmoidOutput, 'f', -1, 64),
			"corpus_tokens":  strconv.Itoa(report.Metrics.CorpusTokenCount),
			"probe_tokens":   strconv.Itoa(report.Metrics.ProbeTokenCount),
		}

		content := strconv.FormatFloat(report.Confidence, 'f', 2, 64)
		if err := p.SetFinding(ctx, c.outputKey, content, "score-confidence", metadata); err != nil {
			return p, fmt.Errorf("failed to record confidence: %w", err)
		}

		return p, nil
	}), nil
}

func (c *confidenceConfig) stageType() string {
	return "score"
}
