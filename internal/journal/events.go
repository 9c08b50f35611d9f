package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/listbind/internal/trace"
)

// BinderSummary describes one binder's journaled history.
type BinderSummary struct {
	Name     string
	FirstSeq int64
	LastSeq  int64
	Events   int
}

// Append writes ev under binder. ev.Binder is ignored in favour of binder
// so events recorded before a rename stay grouped. Appending an existing
// (binder, seq) is a no-op.
func (s *Store) Append(ctx context.Context, binder string, ev trace.Event) error {
	if binder == "" {
		return errors.New("append event: binder name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO binders (name, first_seq) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, binder, ev.Seq); err != nil {
		return fmt.Errorf("append event: register binder: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events
		(binder, seq, kind, side, action, property, strategy, idx, to_idx, count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(binder, seq) DO NOTHING
	`,
		binder,
		ev.Seq,
		string(ev.Kind),
		ev.Side,
		ev.Action,
		ev.Property,
		ev.Strategy,
		ev.Index,
		ev.ToIndex,
		ev.Count,
	); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append event: commit: %w", err)
	}
	return nil
}

// Events returns binder's events in sequence order. Returns an empty slice
// (not nil) when nothing was journaled.
func (s *Store) Events(ctx context.Context, binder string) ([]trace.Event, error) {
	return s.query(ctx, `
		SELECT binder, seq, kind, side, action, property, strategy, idx, to_idx, count
		FROM events
		WHERE binder = ?
		ORDER BY seq ASC
	`, binder)
}

// EventsOfKind returns binder's events of one kind in sequence order.
func (s *Store) EventsOfKind(ctx context.Context, binder string, kind trace.Kind) ([]trace.Event, error) {
	return s.query(ctx, `
		SELECT binder, seq, kind, side, action, property, strategy, idx, to_idx, count
		FROM events
		WHERE binder = ? AND kind = ?
		ORDER BY seq ASC
	`, binder, string(kind))
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]trace.Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []trace.Event{}
	for rows.Next() {
		var (
			ev   trace.Event
			kind string
		)
		if err := rows.Scan(
			&ev.Binder,
			&ev.Seq,
			&kind,
			&ev.Side,
			&ev.Action,
			&ev.Property,
			&ev.Strategy,
			&ev.Index,
			&ev.ToIndex,
			&ev.Count,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = trace.Kind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Binders lists every journaled binder ordered by name.
func (s *Store) Binders(ctx context.Context) ([]BinderSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.name, b.first_seq, COALESCE(MAX(e.seq), 0), COUNT(e.seq)
		FROM binders b
		LEFT JOIN events e ON e.binder = b.name
		GROUP BY b.name, b.first_seq
		ORDER BY b.name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query binders: %w", err)
	}
	defer rows.Close()

	out := []BinderSummary{}
	for rows.Next() {
		var b BinderSummary
		if err := rows.Scan(&b.Name, &b.FirstSeq, &b.LastSeq, &b.Events); err != nil {
			return nil, fmt.Errorf("scan binder: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate binders: %w", err)
	}
	return out, nil
}

// MaxSeq returns the highest sequence number journaled for binder, or 0.
// Pass it to binding.NewClockAt to continue a binder's history.
func (s *Store) MaxSeq(ctx context.Context, binder string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM events WHERE binder = ?`, binder,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}
