package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

const statementColumns = `statement_id, parent_id, creator_id, statement_type, text, is_cluster,
	integrated_options_json, integrated_into, evaluation_json, consensus, consensus_valid,
	total_evaluators, pro_sum, con_sum, as_parent_total_evaluators, popper_json, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatement(row rowScanner) (*model.Statement, error) {
	var (
		st                    model.Statement
		stType                string
		isCluster             int
		optionsJSON, evalJSON string
		popperJSON            sql.NullString
		createdAt             int64
	)
	err := row.Scan(
		&st.StatementID, &st.ParentID, &st.CreatorID, &stType, &st.Text, &isCluster,
		&optionsJSON, &st.IntegratedInto, &evalJSON, &st.Consensus, &st.ConsensusValid,
		&st.TotalEvaluators, &st.ProSum, &st.ConSum, &st.AsParentTotalEvaluators, &popperJSON, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	st.Type = model.StatementType(stType)
	st.IsCluster = isCluster != 0
	st.CreatedAt = fromUnix(createdAt)

	if err := json.Unmarshal([]byte(optionsJSON), &st.IntegratedOptions); err != nil {
		return nil, fmt.Errorf("decode integrated options of %s: %w", st.StatementID, err)
	}
	if len(st.IntegratedOptions) == 0 {
		st.IntegratedOptions = nil
	}
	if err := json.Unmarshal([]byte(evalJSON), &st.Evaluation); err != nil {
		return nil, fmt.Errorf("decode evaluation of %s: %w", st.StatementID, err)
	}
	if popperJSON.Valid && popperJSON.String != "" {
		var p model.PopperHebbianScore
		if err := json.Unmarshal([]byte(popperJSON.String), &p); err != nil {
			return nil, fmt.Errorf("decode popper score of %s: %w", st.StatementID, err)
		}
		st.PopperHebbianScore = &p
	}

	return &st, nil
}

func (s *SQLite) GetStatement(ctx context.Context, id string) (*model.Statement, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+statementColumns+` FROM statements WHERE statement_id = ?`, id)
	st, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("statement", id)
	}
	if err != nil {
		return nil, model.NewStoreError("get statement", err)
	}
	return st, nil
}

func (s *SQLite) ListOptions(ctx context.Context, parentID string) ([]model.Statement, error) {
	return s.queryStatements(ctx, "list options",
		`SELECT `+statementColumns+` FROM statements
		WHERE parent_id = ? AND statement_type = ?
		ORDER BY created_at, statement_id`,
		parentID, string(model.StatementOption))
}

func (s *SQLite) ListIntegratedInto(ctx context.Context, clusterID string) ([]model.Statement, error) {
	return s.queryStatements(ctx, "list integrated sources",
		`SELECT `+statementColumns+` FROM statements
		WHERE integrated_into = ?
		ORDER BY created_at, statement_id`,
		clusterID)
}

func (s *SQLite) queryStatements(ctx context.Context, op, q string, args ...any) ([]model.Statement, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, model.NewStoreError(op, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Statement
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, model.NewStoreError(op, err)
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStoreError(op, err)
	}
	return out, nil
}

func (s *SQLite) PutStatement(ctx context.Context, st model.Statement) error {
	if st.StatementID == "" {
		return model.NewValidationError("MISSING_FIELD", "statement missing statementId")
	}

	options := st.IntegratedOptions
	if options == nil {
		options = []string{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return model.NewStoreError("put statement", err)
	}
	evalJSON, err := json.Marshal(st.Evaluation)
	if err != nil {
		return model.NewStoreError("put statement", err)
	}
	var popperJSON sql.NullString
	if st.PopperHebbianScore != nil {
		b, err := json.Marshal(st.PopperHebbianScore)
		if err != nil {
			return model.NewStoreError("put statement", err)
		}
		popperJSON = sql.NullString{String: string(b), Valid: true}
	}

	const q = `INSERT OR REPLACE INTO statements (` + statementColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		st.StatementID, st.ParentID, st.CreatorID, string(st.Type), st.Text, boolToInt(st.IsCluster),
		string(optionsJSON), st.IntegratedInto, string(evalJSON), st.Consensus, st.ConsensusValid,
		st.TotalEvaluators, st.ProSum, st.ConSum, st.AsParentTotalEvaluators, popperJSON, toUnix(st.CreatedAt),
	)
	if err != nil {
		return model.NewStoreError("put statement", err)
	}
	return nil
}

func (s *SQLite) UpdateDerived(ctx context.Context, id string, fields model.DerivedFields) error {
	return s.withTx(ctx, "update derived fields", func(tx *sql.Tx) error {
		return updateDerivedTx(ctx, tx, id, fields)
	})
}

func updateDerivedTx(ctx context.Context, tx *sql.Tx, id string, fields model.DerivedFields) error {
	evalJSON, err := json.Marshal(fields.Evaluation)
	if err != nil {
		return err
	}

	const q = `UPDATE statements SET
		evaluation_json = ?,
		consensus = ?,
		consensus_valid = ?,
		total_evaluators = ?,
		pro_sum = ?,
		con_sum = ?
	WHERE statement_id = ?`
	res, err := tx.ExecContext(ctx, q,
		string(evalJSON), fields.Consensus, fields.ConsensusValid,
		fields.TotalEvaluators, fields.ProSum, fields.ConSum, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (s *SQLite) UpdateParentTotal(ctx context.Context, id string, total int) error {
	return s.withTx(ctx, "update parent total", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE statements SET as_parent_total_evaluators = ? WHERE statement_id = ?`, total, id)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
}

func (s *SQLite) UpdateClusterLinks(ctx context.Context, clusterID string, sourceIDs []string, fields *model.DerivedFields) error {
	return s.withTx(ctx, "update cluster links", func(tx *sql.Tx) error {
		optionsJSON, err := json.Marshal(append([]string{}, sourceIDs...))
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE statements SET is_cluster = 1, integrated_options_json = ? WHERE statement_id = ?`,
			string(optionsJSON), clusterID)
		if err != nil {
			return err
		}
		if err := requireRow(res, clusterID); err != nil {
			return err
		}

		// Sources dropped from the cluster lose their link.
		if _, err := tx.ExecContext(ctx,
			`UPDATE statements SET integrated_into = '' WHERE integrated_into = ?`, clusterID); err != nil {
			return err
		}

		for _, id := range sourceIDs {
			res, err := tx.ExecContext(ctx, `UPDATE statements SET integrated_into = ? WHERE statement_id = ?`, clusterID, id)
			if err != nil {
				return err
			}
			if err := requireRow(res, id); err != nil {
				return err
			}
		}

		if fields != nil {
			return updateDerivedTx(ctx, tx, clusterID, *fields)
		}
		return nil
	})
}

func (s *SQLite) UpdateCorroboration(ctx context.Context, id string, score model.PopperHebbianScore, consensusValid float64) error {
	return s.withTx(ctx, "update corroboration", func(tx *sql.Tx) error {
		popperJSON, err := json.Marshal(score)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE statements SET popper_json = ?, consensus_valid = ? WHERE statement_id = ?`,
			string(popperJSON), consensusValid, id)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return model.NewNotFoundError("statement", id)
	}
	return nil
}
