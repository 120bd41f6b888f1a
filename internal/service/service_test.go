package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delib-org/Freedi-app-sub004/internal/classify"
	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/store"
)

var (
	owner    = Caller{ID: "alice"}
	admin    = Caller{ID: "root", Admin: true}
	stranger = Caller{ID: "mallory"}
)

func newService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()
	fixture := model.Fixture{
		Statements: []model.Statement{
			{StatementID: "q", CreatorID: "alice", Type: model.StatementQuestion},
			{StatementID: "a", ParentID: "q", CreatorID: "bob", Type: model.StatementOption, Text: "Plant trees"},
			{StatementID: "b", ParentID: "q", CreatorID: "bob", Type: model.StatementOption},
			{StatementID: "c", ParentID: "q", CreatorID: "alice", Type: model.StatementOption},
		},
		Evaluations: []model.Evaluation{
			{StatementID: "a", ParentID: "q", EvaluatorID: "u1", Value: 1},
			{StatementID: "b", ParentID: "q", EvaluatorID: "u1", Value: 0.5},
			{StatementID: "b", ParentID: "q", EvaluatorID: "u2", Value: -1},
		},
	}
	svc := New(m, Options{Workers: 2})
	_, err := svc.ImportFixture(ctx, fixture)
	require.NoError(t, err)
	return svc, m
}

func TestCallerCanAdminister(t *testing.T) {
	st := &model.Statement{CreatorID: "alice"}
	assert.True(t, owner.CanAdminister(st))
	assert.True(t, admin.CanAdminister(st))
	assert.False(t, stranger.CanAdminister(st))
	assert.False(t, Caller{}.CanAdminister(&model.Statement{}))
}

func TestRecalculate(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	summary, err := svc.Recalculate(ctx, owner, RecalcRequest{StatementID: "q"})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	// c has no evaluations but its stored consensusValid is still unset.
	assert.Equal(t, 3, summary.Fixed)

	a, err := m.GetStatement(ctx, "a")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, a.Consensus, 1e-12)
}

func TestRecalculate_Errors(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller Caller
		req    RecalcRequest
		want   error
	}{
		{"missing id", admin, RecalcRequest{}, model.ErrValidation},
		{"unknown statement", admin, RecalcRequest{StatementID: "nope"}, model.ErrNotFound},
		{"not creator", stranger, RecalcRequest{StatementID: "q"}, model.ErrAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Recalculate(ctx, tt.caller, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	a, err := m.GetStatement(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, a.TotalEvaluators, "rejected calls must not write")
}

func TestFixCluster(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	res, err := svc.FixCluster(ctx, owner, FixClusterRequest{ClusterID: "c", SourceIDs: []string{"a", "b", "a", "c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.SourceIDs)
	assert.True(t, res.Changed)
	assert.True(t, res.LinksUpdated)
	assert.Equal(t, 2, res.Evaluators)

	// u1 averages 1 and 0.5; u2 stays at -1.
	assert.InDelta(t, 0.75-1, res.After.Evaluation.SumEvaluations, 1e-12)

	c, err := m.GetStatement(ctx, "c")
	require.NoError(t, err)
	assert.True(t, c.IsCluster)
	assert.Equal(t, []string{"a", "b"}, c.IntegratedOptions)
	assert.True(t, res.After.Equal(model.DerivedFieldsOf(*c)))

	a, err := m.GetStatement(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "c", a.IntegratedInto)

	// The repaired linkage is what the next recalculation finds.
	summary, err := svc.Recalculate(ctx, admin, RecalcRequest{StatementID: "q"})
	require.NoError(t, err)
	for _, d := range summary.Diffs {
		assert.NotEqual(t, "c", d.StatementID)
	}
}

func TestFixCluster_DryRun(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	res, err := svc.FixCluster(ctx, admin, FixClusterRequest{ClusterID: "c", SourceIDs: []string{"a"}, DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.True(t, res.Changed)
	assert.False(t, res.LinksUpdated)

	c, err := m.GetStatement(ctx, "c")
	require.NoError(t, err)
	assert.False(t, c.IsCluster)
	assert.Empty(t, c.IntegratedOptions)
	assert.Zero(t, c.TotalEvaluators)
}

func TestFixCluster_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller Caller
		req    FixClusterRequest
		want   error
	}{
		{"missing cluster", admin, FixClusterRequest{SourceIDs: []string{"a"}}, model.ErrValidation},
		{"missing sources", admin, FixClusterRequest{ClusterID: "c"}, model.ErrValidation},
		{"only self", admin, FixClusterRequest{ClusterID: "c", SourceIDs: []string{"c", ""}}, model.ErrValidation},
		{"unknown cluster", admin, FixClusterRequest{ClusterID: "x", SourceIDs: []string{"a"}}, model.ErrNotFound},
		{"unknown source", admin, FixClusterRequest{ClusterID: "c", SourceIDs: []string{"a", "ghost"}}, model.ErrNotFound},
		{"not creator", Caller{ID: "bob"}, FixClusterRequest{ClusterID: "c", SourceIDs: []string{"a"}}, model.ErrAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FixCluster(ctx, tt.caller, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

type stubClassifier struct {
	result *classify.Result
	err    error
}

func (s stubClassifier) Classify(ctx context.Context, req classify.Request) (*classify.Result, error) {
	return s.result, s.err
}

func TestPostEvidence(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.PutStatement(ctx, model.Statement{StatementID: "a", Type: model.StatementOption}))

	svc := New(m, Options{Classifier: stubClassifier{result: &classify.Result{EvidenceType: model.EvidenceData, CorroborationScore: 0.9}}})

	ev, scored, err := svc.PostEvidence(ctx, Caller{ID: "u1"}, model.Evidence{ParentID: "a", Text: "A 2019 trial found..."})
	require.NoError(t, err)
	assert.Equal(t, "u1", ev.CreatorID)
	assert.NotEmpty(t, ev.EvidenceID)
	assert.Equal(t, model.EvidenceData, ev.EvidenceType)
	assert.Equal(t, 1, scored.EvidenceCount)
	assert.Greater(t, scored.HebbianScore, 0.6)

	stored, err := m.GetStatement(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, stored.PopperHebbianScore)
	assert.InDelta(t, scored.HebbianScore, stored.PopperHebbianScore.HebbianScore, 1e-12)
}

func TestPostEvidence_ClassifierFailureIsNeutral(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.PutStatement(ctx, model.Statement{StatementID: "a", Type: model.StatementOption}))

	svc := New(m, Options{Classifier: stubClassifier{err: errors.New("upstream 503")}})

	ev, scored, err := svc.PostEvidence(ctx, Caller{ID: "u1"}, model.Evidence{ParentID: "a", Text: "I think so"})
	require.NoError(t, err)
	assert.Equal(t, model.EvidenceArgument, ev.EvidenceType)
	assert.InDelta(t, 0.5, ev.CorroborationScore, 1e-12)
	assert.InDelta(t, 0.6, scored.HebbianScore, 1e-12)
}

func TestPostEvidence_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, _, err := svc.PostEvidence(ctx, Caller{}, model.Evidence{ParentID: "a"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, _, err = svc.PostEvidence(ctx, owner, model.Evidence{})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, _, err = svc.PostEvidence(ctx, owner, model.Evidence{ParentID: "missing"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRunner(t *testing.T) {
	svc, _ := newService(t)

	summary, err := svc.Runner(admin).Run(context.Background(), "q", true)
	require.NoError(t, err)
	assert.True(t, summary.DryRun)

	_, err = svc.Runner(stranger).Run(context.Background(), "q", true)
	assert.ErrorIs(t, err, model.ErrAuthorization)
}

func TestImportFixture_ScoresEvidence(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	legacy, strong, weak := 1.0, 0.9, 0.2
	fixture := model.Fixture{
		Statements: []model.Statement{
			{StatementID: "q", CreatorID: "alice", Type: model.StatementQuestion},
			{StatementID: "a", ParentID: "q", Type: model.StatementOption, Consensus: 0.3},
			{StatementID: "b", ParentID: "q", Type: model.StatementOption},
		},
		Evaluations: []model.Evaluation{
			{StatementID: "a", ParentID: "q", EvaluatorID: "u1", Value: 1},
		},
		Evidence: []model.FixtureEvidence{
			{EvidenceID: "e1", ParentID: "a", EvidenceType: model.EvidenceData, Support: &legacy},
			{EvidenceID: "e2", ParentID: "a", EvidenceType: model.EvidenceTestimony, CorroborationScore: &strong},
			{EvidenceID: "e3", ParentID: "b", EvidenceType: model.EvidenceAnecdote, CorroborationScore: &weak},
		},
	}

	res, err := New(m, Options{}).ImportFixture(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Evidence)
	require.Len(t, res.Scores, 2)

	a, err := m.GetStatement(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, a.PopperHebbianScore)
	assert.Equal(t, 2, a.PopperHebbianScore.EvidenceCount)
	assert.Equal(t, model.StatusLookingGood, a.PopperHebbianScore.Status)
	assert.NotZero(t, a.ConsensusValid)

	b, err := m.GetStatement(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, b.PopperHebbianScore)
	assert.Equal(t, 1, b.PopperHebbianScore.EvidenceCount)

	items, err := m.ListEvidence(ctx, "a")
	require.NoError(t, err)
	require.Len(t, items, 2)
	byID := map[string]model.Evidence{items[0].EvidenceID: items[0], items[1].EvidenceID: items[1]}
	assert.Equal(t, 1.0, byID["e1"].CorroborationScore, "legacy support 1 remaps to full corroboration")
	assert.Equal(t, 1.0, byID["e1"].EvidenceWeight)
	assert.Equal(t, 1.0, byID["e1"].Support)
	assert.Equal(t, 0.7, byID["e2"].EvidenceWeight)
}

func TestImportFixture_RejectsInvalidEvidence(t *testing.T) {
	m := store.NewMemory()
	seven := 7.0
	_, err := New(m, Options{}).ImportFixture(context.Background(), model.Fixture{
		Statements: []model.Statement{{StatementID: "a", ParentID: "q", Type: model.StatementOption}},
		Evidence:   []model.FixtureEvidence{{EvidenceID: "e", ParentID: "a", EvidenceType: model.EvidenceData, CorroborationScore: &seven}},
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = m.GetStatement(context.Background(), "a")
	assert.ErrorIs(t, err, model.ErrNotFound, "nothing is written when validation fails")
}
