package probe

import (
	"math"
	"strings"
)

// Sigmoid is the logistic activation function 1/(1+e^-z).
// Output is strictly within (0, 1) for finite inputs, with Sigmoid(0) = 0.5.
func Sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// SigmoidMetrics records the intermediate values of a confidence calculation.
type SigmoidMetrics struct {
	RawAlignmentScore float64
	NormalizedZ       float64
	SigmoidOutput     float64
	ConfidencePercent float64
	CorpusTokenCount  int
	ProbeTokenCount   int
}

// ConfidenceReport is the complete confidence analysis for a claim.
type ConfidenceReport struct {
	Claim          string
	CorpusSize     int
	Confidence     float64
	Classification string
	Metrics        SigmoidMetrics
}

// Classify maps a confidence percentage to its classification band.
func Classify(confidence float64) string {
	switch {
	case confidence >= thresholdHigh:
		return ClassificationHigh
	case confidence >= thresholdMedium:
		return ClassificationMedium
	default:
		return ClassificationLow
	}
}

// Scorer translates a truth corpus into a statistical confidence score.
//
// The alignment heuristic measures corpus token density against the claim:
// total corpus tokens divided by (claim tokens x corpus size). The alignment
// is scaled down, clamped into [0, 5], and passed through the sigmoid. The
// result is a percentage rounded to two decimals.
type Scorer struct{}

// NewScorer creates a confidence scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Confidence computes the confidence report for a claim against its corpus.
// An empty corpus or an empty claim scores zero.
func (s *Scorer) Confidence(claim string, corpus []CorpusItem) ConfidenceReport {
	probeTokens := len(Tokenize(claim))

	report := ConfidenceReport{
		Claim:      claim,
		CorpusSize: len(corpus),
		Metrics: SigmoidMetrics{
			ProbeTokenCount: probeTokens,
		},
	}

	if len(corpus) == 0 || probeTokens == 0 {
		report.Classification = Classify(0)
		return report
	}

	totalTokens := 0
	for _, item := range corpus {
		totalTokens += len(strings.Fields(item.Snippet))
	}

	alignment := float64(totalTokens) / (float64(probeTokens) * float64(len(corpus)))
	z := clamp(alignment/alignmentScale, zClampMin, zClampMax)
	sigma := Sigmoid(z)
	confidence := round2(sigma * 100)

	report.Confidence = confidence
	report.Classification = Classify(confidence)
	report.Metrics = SigmoidMetrics{
		RawAlignmentScore: alignment,
		NormalizedZ:       z,
		SigmoidOutput:     sigma,
		ConfidencePercent: confidence,
		CorpusTokenCount:  totalTokens,
		ProbeTokenCount:   probeTokens,
	}

	return report
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
