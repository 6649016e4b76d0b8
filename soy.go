package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// SoyMemory implements Memory using soy for Postgres persistence.
// Finding embeddings are stored in a pgvector column, so semantic search
// runs as an ordered distance query in the database.
type SoyMemory struct {
	probes   *soy.Soy[Probe]
	findings *soy.Soy[Finding]
	db       *sqlx.DB
}

// NewSoyMemory creates a new soy-backed Memory implementation.
func NewSoyMemory(db *sqlx.DB) (*SoyMemory, error) {
	renderer := postgres.New()

	probes, err := soy.New[Probe](db, "probes", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize probes table: %w", err)
	}

	findings, err := soy.New[Finding](db, "findings", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize findings table: %w", err)
	}

	return &SoyMemory{
		probes:   probes,
		findings: findings,
		db:       db,
	}, nil
}

// CreateProbe persists a new probe and returns it with ID populated.
func (m *SoyMemory) CreateProbe(ctx context.Context, p *Probe) (*Probe, error) {
	inserted, err := m.probes.Insert().Exec(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to insert probe: %w", err)
	}
	return inserted, nil
}

// GetProbe loads a probe by ID, including all its findings.
func (m *SoyMemory) GetProbe(ctx context.Context, id string) (*Probe, error) {
	p, err := m.probes.Select().
		Where("id", "=", "id").
		Exec(ctx, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get probe: %w", err)
	}

	if err := m.hydrateProbe(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetProbeByTraceID loads a probe by trace ID, including all its findings.
func (m *SoyMemory) GetProbeByTraceID(ctx context.Context, traceID string) (*Probe, error) {
	p, err := m.probes.Select().
		Where("trace_id", "=", "trace_id").
		Exec(ctx, map[string]any{"trace_id": traceID})
	if err != nil {
		return nil, fmt.Errorf("failed to get probe by trace ID: %w", err)
	}

	if err := m.hydrateProbe(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetChildProbes loads all probes that have the given probe as parent.
func (m *SoyMemory) GetChildProbes(ctx context.Context, parentID string) ([]*Probe, error) {
	probes, err := m.probes.Query().
		Where("parent_id", "=", "parent_id").
		OrderBy("created_at", "asc").
		Exec(ctx, map[string]any{"parent_id": parentID})
	if err != nil {
		return nil, fmt.Errorf("failed to get child probes: %w", err)
	}

	for _, p := range probes {
		if err := m.hydrateProbe(ctx, p); err != nil {
			return nil, err
		}
	}

	return probes, nil
}

// AddFinding persists a finding and returns it with ID populated.
func (m *SoyMemory) AddFinding(ctx context.Context, f *Finding) (*Finding, error) {
	inserted, err := m.findings.Insert().Exec(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to insert finding: %w", err)
	}
	return inserted, nil
}

// GetFindings loads all findings for a probe.
func (m *SoyMemory) GetFindings(ctx context.Context, probeID string) ([]Finding, error) {
	findingPtrs, err := m.findings.Query().
		Where("probe_id", "=", "probe_id").
		OrderBy("created", "asc").
		Exec(ctx, map[string]any{"probe_id": probeID})
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}

	findings := make([]Finding, len(findingPtrs))
	for i, f := range findingPtrs {
		findings[i] = *f
	}
	return findings, nil
}

// UpdateProbe updates probe metadata (timestamps).
func (m *SoyMemory) UpdateProbe(ctx context.Context, p *Probe) error {
	_, err := m.probes.Modify().
		Set("updated_at", "updated_at").
		Where("id", "=", "id").
		Exec(ctx, map[string]any{
			"updated_at": time.Now(),
			"id":         p.ID,
		})
	if err != nil {
		return fmt.Errorf("failed to update probe: %w", err)
	}
	return nil
}

// DeleteProbe removes a probe and all its findings.
func (m *SoyMemory) DeleteProbe(ctx context.Context, id string) error {
	// Delete findings first (foreign key constraint)
	_, err := m.findings.Remove().
		Where("probe_id", "=", "probe_id").
		Exec(ctx, map[string]any{"probe_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete findings: %w", err)
	}

	_, err = m.probes.Remove().
		Where("id", "=", "id").
		Exec(ctx, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete probe: %w", err)
	}

	return nil
}

// hydrateProbe loads findings into a probe.
func (m *SoyMemory) hydrateProbe(ctx context.Context, p *Probe) error {
	findings, err := m.GetFindings(ctx, p.ID)
	if err != nil {
		return err
	}

	// Set memory reference for future persistence operations
	p.SetMemory(m)

	// Add findings to probe (using internal method to avoid re-persistence)
	for _, f := range findings {
		p.AddFindingWithoutPersist(f)
	}

	return nil
}

// Close closes the underlying database connection.
func (m *SoyMemory) Close() error {
	return m.db.Close()
}

// SearchFindings finds findings semantically similar to the query embedding.
// Returns findings ordered by similarity, limited to the specified count.
// Findings without embeddings are excluded from results.
func (m *SoyMemory) SearchFindings(ctx context.Context, embedding Vector, limit int) ([]FindingWithProbe, error) {
	// Query findings ordered by vector distance
	findings, err := m.findings.Query().
		WhereNotNull("embedding").
		OrderByExpr("embedding", "<->", "query_embedding", "asc").
		Limit(limit).
		Exec(ctx, map[string]any{"query_embedding": embedding})
	if err != nil {
		return nil, fmt.Errorf("failed to search findings: %w", err)
	}

	if len(findings) == 0 {
		return nil, nil
	}

	// Collect unique probe IDs
	probeIDSet := make(map[string]struct{})
	for _, f := range findings {
		probeIDSet[f.ProbeID] = struct{}{}
	}
	probeIDs := make([]string, 0, len(probeIDSet))
	for id := range probeIDSet {
		probeIDs = append(probeIDs, id)
	}

	// Query probes by IDs
	probes, err := m.probes.Query().
		Where("id", "IN", "ids").
		Exec(ctx, map[string]any{"ids": probeIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to get probes: %w", err)
	}

	// Build probe map for lookup
	probeMap := make(map[string]*Probe, len(probes))
	for _, p := range probes {
		p.SetMemory(m)
		probeMap[p.ID] = p
	}

	// Build results maintaining finding order (by similarity)
	results := make([]FindingWithProbe, 0, len(findings))
	for _, f := range findings {
		parent := probeMap[f.ProbeID]
		if parent == nil {
			continue
		}
		results = append(results, FindingWithProbe{
			Finding: *f,
			Probe:   parent,
		})
	}

	return results, nil
}

// Compile-time check: *SoyMemory must implement Memory.
var _ Memory = (*SoyMemory)(nil)
