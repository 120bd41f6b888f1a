package store

import (
	"context"
	"database/sql"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

func (s *SQLite) ListByStatement(ctx context.Context, statementID string) ([]model.Evaluation, error) {
	return s.queryEvaluations(ctx, "list evaluations by statement",
		`SELECT statement_id, evaluator_id, parent_id, value, migrated, created_at
		FROM evaluations WHERE statement_id = ?
		ORDER BY created_at, evaluator_id`, statementID)
}

func (s *SQLite) ListByParent(ctx context.Context, parentID string) ([]model.Evaluation, error) {
	return s.queryEvaluations(ctx, "list evaluations by parent",
		`SELECT statement_id, evaluator_id, parent_id, value, migrated, created_at
		FROM evaluations WHERE parent_id = ?
		ORDER BY created_at, evaluator_id, statement_id`, parentID)
}

func (s *SQLite) queryEvaluations(ctx context.Context, op, q string, arg string) ([]model.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, model.NewStoreError(op, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Evaluation
	for rows.Next() {
		var (
			e         model.Evaluation
			migrated  int
			createdAt int64
		)
		if err := rows.Scan(&e.StatementID, &e.EvaluatorID, &e.ParentID, &e.Value, &migrated, &createdAt); err != nil {
			return nil, model.NewStoreError(op, err)
		}
		e.Migrated = migrated != 0
		e.CreatedAt = fromUnix(createdAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStoreError(op, err)
	}
	return out, nil
}

func (s *SQLite) PutEvaluation(ctx context.Context, e model.Evaluation) error {
	if err := model.ValidateEvaluation(e); err != nil {
		return err
	}
	const q = `INSERT INTO evaluations (statement_id, evaluator_id, parent_id, value, migrated, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(statement_id, evaluator_id) DO UPDATE SET
	parent_id = excluded.parent_id,
	value = excluded.value,
	migrated = excluded.migrated,
	created_at = excluded.created_at`
	_, err := s.db.ExecContext(ctx, q, e.StatementID, e.EvaluatorID, e.ParentID, e.Value, boolToInt(e.Migrated), toUnix(e.CreatedAt))
	if err != nil {
		return model.NewStoreError("put evaluation", err)
	}
	return nil
}

func (s *SQLite) ListEvidence(ctx context.Context, parentID string) ([]model.Evidence, error) {
	const q = `SELECT evidence_id, parent_id, creator_id, text, evidence_type, evidence_weight,
	corroboration_score, support, created_at
FROM evidence WHERE parent_id = ?
ORDER BY created_at, evidence_id`

	rows, err := s.db.QueryContext(ctx, q, parentID)
	if err != nil {
		return nil, model.NewStoreError("list evidence", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Evidence
	for rows.Next() {
		var (
			ev        model.Evidence
			evType    string
			createdAt int64
		)
		if err := rows.Scan(&ev.EvidenceID, &ev.ParentID, &ev.CreatorID, &ev.Text, &evType,
			&ev.EvidenceWeight, &ev.CorroborationScore, &ev.Support, &createdAt); err != nil {
			return nil, model.NewStoreError("list evidence", err)
		}
		ev.EvidenceType = model.EvidenceType(evType)
		ev.CreatedAt = fromUnix(createdAt)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStoreError("list evidence", err)
	}
	return out, nil
}

func (s *SQLite) PutEvidence(ctx context.Context, ev model.Evidence) error {
	if ev.EvidenceID == "" || ev.ParentID == "" {
		return model.NewValidationError("MISSING_FIELD", "evidence missing evidenceId or parentId")
	}
	return s.withTx(ctx, "put evidence", func(tx *sql.Tx) error {
		const q = `INSERT OR REPLACE INTO evidence (evidence_id, parent_id, creator_id, text, evidence_type,
	evidence_weight, corroboration_score, support, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, q, ev.EvidenceID, ev.ParentID, ev.CreatorID, ev.Text, string(ev.EvidenceType),
			ev.EvidenceWeight, ev.CorroborationScore, ev.Support, toUnix(ev.CreatedAt))
		return err
	})
}
