package store

import (
	"context"
	"database/sql"
	"errors"

	"study-notes/models"

	"github.com/lib/pq"
)

const groupColumns = "id, user_id, name, created_at"

func (s *Store) ListGroups(ctx context.Context, userID int) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	return scanGroups(rows)
}

// CreateGroup inserts a group and links the given notes to it in one
// transaction. Every note must belong to the user.
func (s *Store) CreateGroup(ctx context.Context, userID int, name string, noteIDs []int) (models.Group, error) {
	noteIDs = uniqueIDs(noteIDs)
	var g models.Group
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			"INSERT INTO groups (name, user_id) VALUES ($1, $2) RETURNING "+groupColumns,
			name, userID).Scan(&g.ID, &g.UserID, &g.Name, &g.CreatedAt)
		if err != nil {
			return err
		}

		ok, err := ownsAll(ctx, tx, "notes", userID, noteIDs)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return link(ctx, tx, noteIDs, []int{g.ID})
	})
	if err != nil {
		return models.Group{}, err
	}
	g.Notes = noteIDs
	return g, nil
}

func (s *Store) RenameGroup(ctx context.Context, userID, groupID int, name string) (models.Group, error) {
	var g models.Group
	err := s.db.QueryRowContext(ctx,
		"UPDATE groups SET name = $1 WHERE id = $2 AND user_id = $3 RETURNING "+groupColumns,
		name, groupID, userID).Scan(&g.ID, &g.UserID, &g.Name, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrNotFound
	}
	return g, err
}

// DeleteGroups removes the user's groups among ids, together with their
// memberships, and reports how many groups were deleted. Ids the user does
// not own are ignored.
func (s *Store) DeleteGroups(ctx context.Context, userID int, ids []int) (int, error) {
	ids = uniqueIDs(ids)
	var deleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM note_groups WHERE group_id IN (SELECT id FROM groups WHERE id = ANY($1) AND user_id = $2)",
			pq.Array(ids), userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"DELETE FROM groups WHERE id = ANY($1) AND user_id = $2", pq.Array(ids), userID)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return int(deleted), err
}

// GroupsForNote returns the groups a note of the user belongs to.
func (s *Store) GroupsForNote(ctx context.Context, userID, noteID int) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.user_id, g.name, g.created_at FROM groups g
		JOIN note_groups ng ON ng.group_id = g.id
		JOIN notes n ON n.id = ng.note_id
		WHERE ng.note_id = $1 AND n.user_id = $2 AND g.user_id = $2
		ORDER BY g.id`,
		noteID, userID)
	if err != nil {
		return nil, err
	}
	return scanGroups(rows)
}

// GroupIDsForNote is GroupsForNote reduced to ids.
func (s *Store) GroupIDsForNote(ctx context.Context, userID, noteID int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ng.group_id FROM note_groups ng
		JOIN notes n ON n.id = ng.note_id
		WHERE ng.note_id = $1 AND n.user_id = $2
		ORDER BY ng.group_id`,
		noteID, userID)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// ReplaceNoteGroups makes groupIDs the exact membership of the note: all
// existing rows for the note are deleted and the new set inserted in one
// transaction. It returns the stored set with duplicates removed.
func (s *Store) ReplaceNoteGroups(ctx context.Context, userID, noteID int, groupIDs []int) ([]int, error) {
	groupIDs = uniqueIDs(groupIDs)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM notes WHERE id = $1 AND user_id = $2 FOR UPDATE", noteID, userID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		ok, err := ownsAll(ctx, tx, "groups", userID, groupIDs)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM note_groups WHERE note_id = $1", noteID); err != nil {
			return err
		}
		return link(ctx, tx, []int{noteID}, groupIDs)
	})
	if err != nil {
		return nil, err
	}
	return groupIDs, nil
}
