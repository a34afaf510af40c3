package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"study-notes/models"
	"study-notes/store"
)

// memStore is an in-memory Store with the same ownership rules as the SQL
// store.
type memStore struct {
	mu     sync.Mutex
	nextID int
	users  map[string]models.User
	notes  map[int]models.Note
	groups map[int]models.Group
	links  []membership
	err    error
}

// membership is one note_groups row.
type membership struct {
	NoteID  int
	GroupID int
}

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]models.User{},
		notes:  map[int]models.Note{},
		groups: map[int]models.Group{},
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func dedupe(ids []int) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (m *memStore) CreateUser(ctx context.Context, email, hash string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.User{}, m.err
	}
	if _, ok := m.users[email]; ok {
		return models.User{}, store.ErrEmailTaken
	}
	u := models.User{ID: m.id(), Email: email, PasswordHash: hash, CreatedAt: baseTime}
	m.users[email] = u
	return u, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.User{}, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memStore) userNotes(userID int) []models.Note {
	out := []models.Note{}
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListNotes(ctx context.Context, userID, limit, offset int) ([]models.Note, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	all := m.userNotes(userID)
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memStore) AllNotes(ctx context.Context, userID int) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.userNotes(userID), nil
}

func (m *memStore) GetNote(ctx context.Context, userID, noteID int) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.UserID != userID {
		return models.Note{}, store.ErrNotFound
	}
	return n, nil
}

func (m *memStore) ownsGroups(userID int, ids []int) bool {
	for _, id := range ids {
		if g, ok := m.groups[id]; !ok || g.UserID != userID {
			return false
		}
	}
	return true
}

func (m *memStore) ownsNotes(userID int, ids []int) bool {
	for _, id := range ids {
		if n, ok := m.notes[id]; !ok || n.UserID != userID {
			return false
		}
	}
	return true
}

func (m *memStore) CreateNote(ctx context.Context, userID int, title, content string, groupIDs []int) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Note{}, m.err
	}
	groupIDs = dedupe(groupIDs)
	if !m.ownsGroups(userID, groupIDs) {
		return models.Note{}, store.ErrNotFound
	}
	id := m.id()
	ts := baseTime.Add(time.Duration(id) * time.Second)
	n := models.Note{ID: id, UserID: userID, Title: title, Content: content, CreatedAt: ts, UpdatedAt: ts}
	m.notes[id] = n
	for _, g := range groupIDs {
		m.links = append(m.links, membership{NoteID: id, GroupID: g})
	}
	n.Groups = groupIDs
	return n, nil
}

func (m *memStore) UpdateNote(ctx context.Context, userID, noteID int, title, content string) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.UserID != userID {
		return models.Note{}, store.ErrNotFound
	}
	n.Title, n.Content, n.UpdatedAt = title, content, n.UpdatedAt.Add(time.Minute)
	m.notes[noteID] = n
	return n, nil
}

func (m *memStore) unlink(keep func(membership) bool) {
	out := m.links[:0]
	for _, l := range m.links {
		if keep(l) {
			out = append(out, l)
		}
	}
	m.links = out
}

func (m *memStore) DeleteNote(ctx context.Context, userID, noteID int) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.UserID != userID {
		return models.Note{}, store.ErrNotFound
	}
	delete(m.notes, noteID)
	m.unlink(func(l membership) bool { return l.NoteID != noteID })
	return n, nil
}

func (m *memStore) ListGroups(ctx context.Context, userID int) ([]models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Group{}
	for _, g := range m.groups {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateGroup(ctx context.Context, userID int, name string, noteIDs []int) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	noteIDs = dedupe(noteIDs)
	if !m.ownsNotes(userID, noteIDs) {
		return models.Group{}, store.ErrNotFound
	}
	g := models.Group{ID: m.id(), UserID: userID, Name: name, CreatedAt: baseTime}
	m.groups[g.ID] = g
	for _, n := range noteIDs {
		m.links = append(m.links, membership{NoteID: n, GroupID: g.ID})
	}
	g.Notes = noteIDs
	return g, nil
}

func (m *memStore) RenameGroup(ctx context.Context, userID, groupID int, name string) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok || g.UserID != userID {
		return models.Group{}, store.ErrNotFound
	}
	g.Name = name
	m.groups[groupID] = g
	return g, nil
}

func (m *memStore) DeleteGroups(ctx context.Context, userID int, ids []int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for _, id := range dedupe(ids) {
		if g, ok := m.groups[id]; ok && g.UserID == userID {
			delete(m.groups, id)
			m.unlink(func(l membership) bool { return l.GroupID != id })
			deleted++
		}
	}
	return deleted, nil
}

func (m *memStore) NotesInGroup(ctx context.Context, userID, groupID int) ([]models.Note, error) {
	return m.NotesInGroups(ctx, userID, []int{groupID})
}

func (m *memStore) NotesInGroups(ctx context.Context, userID int, groupIDs []int) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[int]bool{}
	for _, id := range groupIDs {
		if g, ok := m.groups[id]; ok && g.UserID == userID {
			wanted[id] = true
		}
	}
	inGroup := map[int]bool{}
	for _, l := range m.links {
		if wanted[l.GroupID] {
			inGroup[l.NoteID] = true
		}
	}
	out := []models.Note{}
	for _, n := range m.userNotes(userID) {
		if inGroup[n.ID] {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) GroupsForNote(ctx context.Context, userID, noteID int) ([]models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Group{}
	if n, ok := m.notes[noteID]; !ok || n.UserID != userID {
		return out, nil
	}
	for _, l := range m.links {
		if g, ok := m.groups[l.GroupID]; ok && l.NoteID == noteID && g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GroupIDsForNote(ctx context.Context, userID, noteID int) ([]int, error) {
	groups, err := m.GroupsForNote(ctx, userID, noteID)
	ids := []int{}
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids, err
}

func (m *memStore) ReplaceNoteGroups(ctx context.Context, userID, noteID int, groupIDs []int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notes[noteID]; !ok || n.UserID != userID {
		return nil, store.ErrNotFound
	}
	groupIDs = dedupe(groupIDs)
	if !m.ownsGroups(userID, groupIDs) {
		return nil, store.ErrNotFound
	}
	m.unlink(func(l membership) bool { return l.NoteID != noteID })
	for _, g := range groupIDs {
		m.links = append(m.links, membership{NoteID: noteID, GroupID: g})
	}
	return groupIDs, nil
}

// linkCount counts membership rows touching the note or group id.
func (m *memStore) linkCount(noteID, groupID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, l := range m.links {
		if l.NoteID == noteID || l.GroupID == groupID {
			count++
		}
	}
	return count
}
