// Package store holds every SQL statement the server runs. Each query that
// touches notes or groups is scoped by the owning user id, so a caller can
// never observe or change rows belonging to someone else.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"study-notes/db"
	"study-notes/models"

	"github.com/lib/pq"
)

var (
	// ErrNotFound means no row matched the id and owner.
	ErrNotFound = errors.New("store: not found")
	// ErrEmailTaken means a user with that email already exists.
	ErrEmailTaken = errors.New("store: email already exists")
)

const uniqueViolation = "23505"

const noteColumns = "id, user_id, title, content, created_at, updated_at"

// Store runs queries against a shared connection pool.
type Store struct {
	db *sql.DB
}

func New(conn *sql.DB) *Store {
	return &Store{db: conn}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	defer rows.Close()
	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanGroups(rows *sql.Rows) ([]models.Group, error) {
	defer rows.Close()
	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanIDs(rows *sql.Rows) ([]int, error) {
	defer rows.Close()
	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// uniqueIDs drops repeated ids, keeping first-seen order.
func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ownsAll reports whether every id in ids names a row of table owned by userID.
// ids must already be unique.
func ownsAll(ctx context.Context, tx *sql.Tx, table string, userID int, ids []int) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = $1 AND id = ANY($2)", table)
	if err := tx.QueryRowContext(ctx, query, userID, pq.Array(ids)).Scan(&count); err != nil {
		return false, err
	}
	return count == len(ids), nil
}

// link inserts one note_groups row per pair.
func link(ctx context.Context, tx *sql.Tx, noteIDs, groupIDs []int) error {
	if len(noteIDs) == 0 || len(groupIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO note_groups (note_id, group_id)
		SELECT n, g FROM unnest($1::int[]) AS n CROSS JOIN unnest($2::int[]) AS g
		ON CONFLICT DO NOTHING`,
		pq.Array(noteIDs), pq.Array(groupIDs))
	return err
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return db.WithTx(ctx, s.db, fn)
}
