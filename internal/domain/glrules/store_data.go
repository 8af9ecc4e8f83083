package glrules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const ruleColumns = `id::text, seq, name, priority, override_type, applies_to_debit, applies_to_credit,
      effective_from, effective_to, is_active, debit_account, credit_account,
      segment_index, segment_value, full_string, created_at, updated_at`

func (s *Store) ListRules(ctx context.Context, activeOnly bool) ([]Rule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+ruleColumns+`
    FROM gl_override_rules
    WHERE ($1::boolean = false OR is_active)
    ORDER BY priority DESC, created_at DESC, seq DESC
  `, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	index := map[string]int{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		index[rule.ID] = len(out)
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	condRows, err := s.DB.Query(ctx, `
    SELECT rule_id::text, dimension, operator, value, values_json
    FROM gl_override_conditions
    ORDER BY rule_id, ordinal
  `)
	if err != nil {
		return nil, err
	}
	defer condRows.Close()
	for condRows.Next() {
		var ruleID string
		c, err := scanCondition(condRows, &ruleID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[ruleID]; ok {
			out[i].Conditions = append(out[i].Conditions, c)
		}
	}
	return out, condRows.Err()
}

func (s *Store) GetRule(ctx context.Context, id string) (Rule, error) {
	rule, err := scanRule(s.DB.QueryRow(ctx, `
    SELECT `+ruleColumns+`
    FROM gl_override_rules
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrNotFound
	}
	if err != nil {
		return Rule{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT rule_id::text, dimension, operator, value, values_json
    FROM gl_override_conditions
    WHERE rule_id = $1
    ORDER BY ordinal
  `, id)
	if err != nil {
		return Rule{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ruleID string
		c, err := scanCondition(rows, &ruleID)
		if err != nil {
			return Rule{}, err
		}
		rule.Conditions = append(rule.Conditions, c)
	}
	return rule, rows.Err()
}

func (s *Store) CreateRule(ctx context.Context, rule Rule) (Rule, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Rule{}, err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `
    INSERT INTO gl_override_rules (id, name, priority, override_type, applies_to_debit, applies_to_credit,
      effective_from, effective_to, is_active, debit_account, credit_account, segment_index, segment_value, full_string)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    RETURNING seq, created_at, updated_at
  `, rule.ID, rule.Name, rule.Priority, rule.OverrideType, rule.AppliesToDebit, rule.AppliesToCredit,
		rule.EffectiveFrom, rule.EffectiveTo, rule.Active, rule.Target.DebitAccount, rule.Target.CreditAccount,
		rule.Target.SegmentIndex, rule.Target.SegmentValue, rule.Target.FullString,
	).Scan(&rule.Sequence, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return Rule{}, err
	}
	if err := insertConditions(ctx, tx, rule.ID, rule.Conditions); err != nil {
		return Rule{}, err
	}
	return rule, tx.Commit(ctx)
}

func (s *Store) UpdateRule(ctx context.Context, rule Rule) (Rule, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Rule{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
    UPDATE gl_override_rules
    SET name = $2, priority = $3, override_type = $4, applies_to_debit = $5, applies_to_credit = $6,
        effective_from = $7, effective_to = $8, is_active = $9, debit_account = $10, credit_account = $11,
        segment_index = $12, segment_value = $13, full_string = $14, updated_at = now()
    WHERE id = $1
    RETURNING seq, created_at, updated_at
  `, rule.ID, rule.Name, rule.Priority, rule.OverrideType, rule.AppliesToDebit, rule.AppliesToCredit,
		rule.EffectiveFrom, rule.EffectiveTo, rule.Active, rule.Target.DebitAccount, rule.Target.CreditAccount,
		rule.Target.SegmentIndex, rule.Target.SegmentValue, rule.Target.FullString,
	).Scan(&rule.Sequence, &rule.CreatedAt, &rule.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrNotFound
	}
	if err != nil {
		return Rule{}, err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM gl_override_conditions WHERE rule_id = $1", rule.ID); err != nil {
		return Rule{}, err
	}
	if err := insertConditions(ctx, tx, rule.ID, rule.Conditions); err != nil {
		return Rule{}, err
	}
	return rule, tx.Commit(ctx)
}

func (s *Store) DeleteRule(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM gl_override_rules WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertConditions(ctx context.Context, tx pgx.Tx, ruleID string, conditions []Condition) error {
	for i, c := range conditions {
		values := c.Values
		if values == nil {
			values = []string{}
		}
		valuesJSON, err := json.Marshal(values)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO gl_override_conditions (rule_id, ordinal, dimension, operator, value, values_json)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, ruleID, i+1, c.Dimension, c.Operator, c.Value, valuesJSON); err != nil {
			return fmt.Errorf("condition %d: %w", i+1, err)
		}
	}
	return nil
}

func scanRule(row pgx.Row) (Rule, error) {
	var r Rule
	err := row.Scan(&r.ID, &r.Sequence, &r.Name, &r.Priority, &r.OverrideType, &r.AppliesToDebit, &r.AppliesToCredit,
		&r.EffectiveFrom, &r.EffectiveTo, &r.Active, &r.Target.DebitAccount, &r.Target.CreditAccount,
		&r.Target.SegmentIndex, &r.Target.SegmentValue, &r.Target.FullString, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanCondition(row pgx.Row, ruleID *string) (Condition, error) {
	var c Condition
	var valuesJSON []byte
	if err := row.Scan(ruleID, &c.Dimension, &c.Operator, &c.Value, &valuesJSON); err != nil {
		return Condition{}, err
	}
	if len(valuesJSON) > 0 {
		if err := json.Unmarshal(valuesJSON, &c.Values); err != nil {
			return Condition{}, err
		}
	}
	if len(c.Values) == 0 {
		c.Values = nil
	}
	return c, nil
}
