package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var generationEventColumns = []string{
	"id", "sequence", "timestamp_ms", "request_id", "modality", "status",
	"fault", "repair_attempts", "questions", "question_count", "option_count",
	"duration_ms", "error_message",
}

func (r *eventRepo) AppendGeneration(ctx context.Context, data GenerationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(tableGenerationEvents).
		Columns(generationEventColumns[1:]...).
		Values(
			seqNum,
			toMillis(r.now()),
			data.RequestID,
			data.Modality,
			data.Status,
			data.Fault,
			data.RepairAttempts,
			data.Questions,
			data.QuestionCount,
			data.OptionCount,
			data.DurationMs,
			data.ErrorMessage,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save generation event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error) {
	b := builder()
	sel := b.Select(generationEventColumns...).From(b.Table(tableGenerationEvents))
	applyOpts(sel, opts)
	if opts.Status != "" {
		sel.Where(entsql.EQ("status", opts.Status))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}
	defer rows.Close()

	var out []GenerationEvent
	for rows.Next() {
		var e GenerationEvent
		var ts int64
		if err := rows.Scan(
			&e.ID, &e.Sequence, &ts, &e.RequestID, &e.Modality, &e.Status,
			&e.Fault, &e.RepairAttempts, &e.Questions, &e.QuestionCount,
			&e.OptionCount, &e.DurationMs, &e.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan generation event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) GenerationOutcomes(ctx context.Context) ([]OutcomeCount, error) {
	b := builder()
	query, args := b.Select(
		"modality",
		"status",
		"fault",
		entsql.As(entsql.Count("*"), "count"),
		entsql.As(entsql.Avg("repair_attempts"), "avg_repairs"),
		entsql.As(entsql.Avg("duration_ms"), "avg_duration_ms"),
	).
		From(b.Table(tableGenerationEvents)).
		GroupBy("modality", "status", "fault").
		OrderBy("modality", "status", "fault").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query generation outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeCount
	for rows.Next() {
		var o OutcomeCount
		var avgDur float64
		if err := rows.Scan(&o.Modality, &o.Status, &o.Fault, &o.Count, &o.AvgRepairAttempts, &avgDur); err != nil {
			return nil, fmt.Errorf("scan generation outcome: %w", err)
		}
		o.AvgDurationMs = int64(avgDur)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep rows of each event table.
func (r *eventRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}

	var removed int64
	for _, table := range []string{tableLLMRequestEvents, tableGenerationEvents} {
		b := builder()
		// Find the sequence threshold: the keep-th most recent row.
		query, args := b.Select("sequence").
			From(b.Table(table)).
			OrderBy(entsql.Desc("sequence")).
			Offset(keep).
			Limit(1).
			Query()

		var threshold int64
		err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue // fewer than keep rows exist
			}
			return removed, fmt.Errorf("find prune threshold for %s: %w", table, err)
		}

		del, dargs := b.Delete(table).Where(entsql.LTE("sequence", threshold)).Query()
		res, err := r.db.ExecContext(ctx, del, dargs...)
		if err != nil {
			return removed, fmt.Errorf("prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	return removed, nil
}
