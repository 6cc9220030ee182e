package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/gospelrpg/internal/game/inventory"
	"github.com/cory-johannsen/gospelrpg/internal/game/session"
)

// SessionRepository stores session records across the sessions,
// party_members, pool_items and equipped_items tables.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a SessionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save replaces the record stored under slot in a single transaction.
//
// Precondition: slot must be non-empty; rec must not be nil.
// Postcondition: on error no table is changed.
func (r *SessionRepository) Save(ctx context.Context, slot string, rec *session.Record) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	completed := rec.ChaptersCompleted
	if completed == nil {
		completed = []int{}
	}
	chapter := rec.Chapter
	if chapter < 1 {
		chapter = 1
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (slot, chapter, gold, chapters_completed, map_x, map_y, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		ON CONFLICT (slot) DO UPDATE SET
			chapter            = EXCLUDED.chapter,
			gold               = EXCLUDED.gold,
			chapters_completed = EXCLUDED.chapters_completed,
			map_x              = EXCLUDED.map_x,
			map_y              = EXCLUDED.map_y,
			saved_at           = EXCLUDED.saved_at`,
		slot, chapter, rec.Gold, completed, rec.MapX, rec.MapY, nullableTime(rec),
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}

	for _, table := range []string{"party_members", "pool_items", "equipped_items"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE slot = $1", slot); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	batch := &pgx.Batch{}
	for i, m := range rec.Party {
		batch.Queue(`INSERT INTO party_members (slot, position, character_id, hp, mp) VALUES ($1, $2, $3, $4, $5)`,
			slot, i, m.ID, m.HP, m.MP)
	}
	for _, eq := range rec.Equipped {
		batch.Queue(`INSERT INTO equipped_items (slot, character_id, equip_slot, item_id) VALUES ($1, $2, $3, $4)`,
			slot, eq.CharacterID, string(eq.Slot), eq.ItemID)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting party and equipment: %w", err)
		}
	}

	if len(rec.Pool) > 0 {
		rows := make([][]any, len(rec.Pool))
		for i, id := range rec.Pool {
			rows[i] = []any{slot, i, id}
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"pool_items"},
			[]string{"slot", "position", "item_id"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copying pool items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return nil
}

// Load returns the record stored under slot.
//
// Postcondition: returns session.ErrSessionNotFound if no row exists for slot.
func (r *SessionRepository) Load(ctx context.Context, slot string) (*session.Record, error) {
	rec := &session.Record{}
	err := r.db.QueryRow(ctx, `
		SELECT chapter, gold, chapters_completed, map_x, map_y, saved_at
		FROM sessions WHERE slot = $1`,
		slot,
	).Scan(&rec.Chapter, &rec.Gold, &rec.ChaptersCompleted, &rec.MapX, &rec.MapY, &rec.SavedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT character_id, hp, mp FROM party_members WHERE slot = $1 ORDER BY position`, slot)
	if err != nil {
		return nil, fmt.Errorf("querying party members: %w", err)
	}
	rec.Party, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (session.MemberRecord, error) {
		var m session.MemberRecord
		err := row.Scan(&m.ID, &m.HP, &m.MP)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning party members: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT item_id FROM pool_items WHERE slot = $1 ORDER BY position`, slot)
	if err != nil {
		return nil, fmt.Errorf("querying pool items: %w", err)
	}
	rec.Pool, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning pool items: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT character_id, equip_slot, item_id FROM equipped_items
		WHERE slot = $1 ORDER BY character_id, equip_slot`, slot)
	if err != nil {
		return nil, fmt.Errorf("querying equipped items: %w", err)
	}
	rec.Equipped, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (session.EquippedRecord, error) {
		var eq session.EquippedRecord
		var s string
		if err := row.Scan(&eq.CharacterID, &s, &eq.ItemID); err != nil {
			return eq, err
		}
		eq.Slot = inventory.Slot(s)
		return eq, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning equipped items: %w", err)
	}
	return rec, nil
}

// Delete removes the record stored under slot; child rows cascade.
//
// Postcondition: deleting a missing slot is not an error.
func (r *SessionRepository) Delete(ctx context.Context, slot string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE slot = $1`, slot); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Slots returns every stored slot name in order.
func (r *SessionRepository) Slots(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT slot FROM sessions ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	slots, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning sessions: %w", err)
	}
	return slots, nil
}

func nullableTime(rec *session.Record) any {
	if rec.SavedAt.IsZero() {
		return nil
	}
	return rec.SavedAt
}
