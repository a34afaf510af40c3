package store

import (
	"context"
	"database/sql"
	"errors"

	"study-notes/models"

	"github.com/lib/pq"
)

// ListNotes returns one page of the user's notes, newest first, along with
// the user's total note count.
func (s *Store) ListNotes(ctx context.Context, userID, limit, offset int) ([]models.Note, int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	notes, err := scanNotes(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE user_id = $1", userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// AllNotes returns every note the user owns, oldest first.
func (s *Store) AllNotes(ctx context.Context, userID int) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE user_id = $1 ORDER BY created_at, id", userID)
	if err != nil {
		return nil, err
	}
	return scanNotes(rows)
}

func (s *Store) GetNote(ctx context.Context, userID, noteID int) (models.Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = $1 AND user_id = $2", noteID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, ErrNotFound
	}
	return n, err
}

// CreateNote inserts a note and its group memberships in one transaction.
// Every group must belong to the user, otherwise nothing is written and
// ErrNotFound is returned.
func (s *Store) CreateNote(ctx context.Context, userID int, title, content string, groupIDs []int) (models.Note, error) {
	groupIDs = uniqueIDs(groupIDs)
	var note models.Note
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		note, err = scanNote(tx.QueryRowContext(ctx,
			"INSERT INTO notes (user_id, title, content) VALUES ($1, $2, $3) RETURNING "+noteColumns,
			userID, title, content))
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
		return link(ctx, tx, []int{note.ID}, groupIDs)
	})
	if err != nil {
		return models.Note{}, err
	}
	note.Groups = groupIDs
	return note, nil
}

func (s *Store) UpdateNote(ctx context.Context, userID, noteID int, title, content string) (models.Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx,
		"UPDATE notes SET title = $1, content = $2, updated_at = NOW() WHERE id = $3 AND user_id = $4 RETURNING "+noteColumns,
		title, content, noteID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, ErrNotFound
	}
	return n, err
}

// DeleteNote removes the note and its memberships and returns the deleted row.
func (s *Store) DeleteNote(ctx context.Context, userID, noteID int) (models.Note, error) {
	var note models.Note
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM note_groups WHERE note_id IN (SELECT id FROM notes WHERE id = $1 AND user_id = $2)",
			noteID, userID); err != nil {
			return err
		}
		var err error
		note, err = scanNote(tx.QueryRowContext(ctx,
			"DELETE FROM notes WHERE id = $1 AND user_id = $2 RETURNING "+noteColumns,
			noteID, userID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return models.Note{}, err
	}
	return note, nil
}

// NotesInGroup returns the notes in one of the user's groups. A group the
// user does not own yields no notes.
func (s *Store) NotesInGroup(ctx context.Context, userID, groupID int) ([]models.Note, error) {
	return s.NotesInGroups(ctx, userID, []int{groupID})
}

// NotesInGroups returns the distinct notes belonging to any of the user's
// groups in groupIDs, oldest first.
func (s *Store) NotesInGroups(ctx context.Context, userID int, groupIDs []int) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE user_id = $1 AND id = ANY(
			SELECT ng.note_id FROM note_groups ng
			JOIN groups g ON g.id = ng.group_id
			WHERE g.user_id = $1 AND ng.group_id = ANY($2)
		)
		ORDER BY created_at, id`,
		userID, pq.Array(uniqueIDs(groupIDs)))
	if err != nil {
		return nil, err
	}
	return scanNotes(rows)
}
