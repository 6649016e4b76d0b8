package probe

import "context"

// Memory defines the interface for probe persistence.
// Implementations handle the storage and retrieval of Probes and Findings.
type Memory interface {
	// CreateProbe persists a new probe and returns it with ID populated.
	CreateProbe(ctx context.Context, probe *Probe) (*Probe, error)

	// GetProbe loads a probe by ID, including all its findings.
	GetProbe(ctx context.Context, id string) (*Probe, error)

	// GetProbeByTraceID loads a probe by trace ID, including all its findings.
	GetProbeByTraceID(ctx context.Context, traceID string) (*Probe, error)

	// GetChildProbes loads all probes that have the given probe as parent.
	GetChildProbes(ctx context.Context, parentID string) ([]*Probe, error)

	// AddFinding persists a finding and returns it with ID populated.
	AddFinding(ctx context.Context, finding *Finding) (*Finding, error)

	// GetFindings loads all findings for a probe.
	GetFindings(ctx context.Context, probeID string) ([]Finding, error)

	// UpdateProbe updates probe metadata (timestamps).
	UpdateProbe(ctx context.Context, probe *Probe) error

	// DeleteProbe removes a probe and all its findings.
	DeleteProbe(ctx context.Context, id string) error

	// SearchFindings finds findings semantically similar to the query embedding.
	// Returns findings ordered by similarity, limited to the specified count.
	SearchFindings(ctx context.Context, embedding Vector, limit int) ([]FindingWithProbe, error)
}

// FindingWithProbe pairs a finding with its parent probe for search results.
type FindingWithProbe struct {
	Finding Finding
	Probe   *Probe
}
