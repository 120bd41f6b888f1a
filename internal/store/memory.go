package store

import (
	"context"
	"sort"
	"sync"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

type evalKey struct {
	statementID string
	evaluatorID string
}

// Memory is a mutex-guarded in-process store. Reads hand out copies.
type Memory struct {
	mu          sync.RWMutex
	statements  map[string]model.Statement
	evaluations map[evalKey]model.Evaluation
	evidence    map[string]model.Evidence
}

// NewMemory creates an empty memory store
func NewMemory() *Memory {
	return &Memory{
		statements:  make(map[string]model.Statement),
		evaluations: make(map[evalKey]model.Evaluation),
		evidence:    make(map[string]model.Evidence),
	}
}

// Close is a no-op
func (m *Memory) Close() error { return nil }

func (m *Memory) GetStatement(ctx context.Context, id string) (*model.Statement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.statements[id]
	if !ok {
		return nil, model.NewNotFoundError("statement", id)
	}
	c := cloneStatement(s)
	return &c, nil
}

func (m *Memory) ListOptions(ctx context.Context, parentID string) ([]model.Statement, error) {
	return m.filterStatements(func(s model.Statement) bool {
		return s.ParentID == parentID && s.Type == model.StatementOption
	}), nil
}

func (m *Memory) ListIntegratedInto(ctx context.Context, clusterID string) ([]model.Statement, error) {
	return m.filterStatements(func(s model.Statement) bool {
		return s.IntegratedInto == clusterID
	}), nil
}

func (m *Memory) filterStatements(keep func(model.Statement) bool) []model.Statement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Statement
	for _, s := range m.statements {
		if keep(s) {
			out = append(out, cloneStatement(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].StatementID < out[j].StatementID
	})
	return out
}

func (m *Memory) PutStatement(ctx context.Context, s model.Statement) error {
	if s.StatementID == "" {
		return model.NewValidationError("MISSING_FIELD", "statement missing statementId")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements[s.StatementID] = cloneStatement(s)
	return nil
}

func (m *Memory) UpdateDerived(ctx context.Context, id string, fields model.DerivedFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.statements[id]
	if !ok {
		return model.NewNotFoundError("statement", id)
	}
	fields.Apply(&s)
	m.statements[id] = s
	return nil
}

func (m *Memory) UpdateParentTotal(ctx context.Context, id string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.statements[id]
	if !ok {
		return model.NewNotFoundError("statement", id)
	}
	s.AsParentTotalEvaluators = total
	m.statements[id] = s
	return nil
}

func (m *Memory) UpdateClusterLinks(ctx context.Context, clusterID string, sourceIDs []string, fields *model.DerivedFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cluster, ok := m.statements[clusterID]
	if !ok {
		return model.NewNotFoundError("statement", clusterID)
	}
	for _, id := range sourceIDs {
		if _, ok := m.statements[id]; !ok {
			return model.NewNotFoundError("statement", id)
		}
	}

	cluster.IsCluster = true
	cluster.IntegratedOptions = append([]string(nil), sourceIDs...)
	if fields != nil {
		fields.Apply(&cluster)
	}
	m.statements[clusterID] = cluster

	linked := make(map[string]bool, len(sourceIDs))
	for _, id := range sourceIDs {
		linked[id] = true
		src := m.statements[id]
		src.IntegratedInto = clusterID
		m.statements[id] = src
	}
	for id, st := range m.statements {
		if st.IntegratedInto == clusterID && !linked[id] {
			st.IntegratedInto = ""
			m.statements[id] = st
		}
	}
	return nil
}

func (m *Memory) UpdateCorroboration(ctx context.Context, id string, score model.PopperHebbianScore, consensusValid float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.statements[id]
	if !ok {
		return model.NewNotFoundError("statement", id)
	}
	s.PopperHebbianScore = &score
	s.ConsensusValid = consensusValid
	m.statements[id] = s
	return nil
}

func (m *Memory) ListByStatement(ctx context.Context, statementID string) ([]model.Evaluation, error) {
	return m.filterEvaluations(func(e model.Evaluation) bool { return e.StatementID == statementID }), nil
}

func (m *Memory) ListByParent(ctx context.Context, parentID string) ([]model.Evaluation, error) {
	return m.filterEvaluations(func(e model.Evaluation) bool { return e.ParentID == parentID }), nil
}

func (m *Memory) filterEvaluations(keep func(model.Evaluation) bool) []model.Evaluation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Evaluation
	for _, e := range m.evaluations {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if out[i].EvaluatorID != out[j].EvaluatorID {
			return out[i].EvaluatorID < out[j].EvaluatorID
		}
		return out[i].StatementID < out[j].StatementID
	})
	return out
}

func (m *Memory) PutEvaluation(ctx context.Context, e model.Evaluation) error {
	if err := model.ValidateEvaluation(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations[evalKey{e.StatementID, e.EvaluatorID}] = e
	return nil
}

func (m *Memory) ListEvidence(ctx context.Context, parentID string) ([]model.Evidence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Evidence
	for _, ev := range m.evidence {
		if ev.ParentID == parentID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].EvidenceID < out[j].EvidenceID
	})
	return out, nil
}

func (m *Memory) PutEvidence(ctx context.Context, ev model.Evidence) error {
	if ev.EvidenceID == "" || ev.ParentID == "" {
		return model.NewValidationError("MISSING_FIELD", "evidence missing evidenceId or parentId")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evidence[ev.EvidenceID] = ev
	return nil
}

func cloneStatement(s model.Statement) model.Statement {
	if s.IntegratedOptions != nil {
		s.IntegratedOptions = append([]string(nil), s.IntegratedOptions...)
	}
	if s.PopperHebbianScore != nil {
		p := *s.PopperHebbianScore
		s.PopperHebbianScore = &p
	}
	return s
}
