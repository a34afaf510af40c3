package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"study-notes/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupsResponse struct {
	Groups []models.Group `json:"groups"`
}

type notesResponse struct {
	Notes []models.Note `json:"notes"`
}

func createNote(t *testing.T, env *testEnv, token, title string) models.Note {
	t.Helper()
	rr := env.do(t, "POST", "/api/notes/", map[string]string{"title": title, "content": title + " body"}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[models.Note](t, rr)
}

func createGroup(t *testing.T, env *testEnv, token, name string, noteIDs ...int) models.Group {
	t.Helper()
	rr := env.do(t, "POST", "/api/notes/groups", map[string]any{"name": name, "notes_ids": noteIDs}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[models.Group](t, rr)
}

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signup(t, "groups@example.com")
	n1 := createNote(t, env, token, "One")
	n2 := createNote(t, env, token, "Two")

	t.Run("With initial notes", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/notes/groups", map[string]any{
			"name":      "Biology 101",
			"notes_ids": fmt.Sprintf("%d, %d", n1.ID, n2.ID),
		}, token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		g := decodeBody[models.Group](t, rr)
		assert.Equal(t, userID, g.UserID)
		assert.ElementsMatch(t, []int{n1.ID, n2.ID}, g.Notes)

		notes := decodeBody[notesResponse](t, env.do(t, "GET", fmt.Sprintf("/api/notes/groupNotes/%d", g.ID), nil, token))
		assert.Len(t, notes.Notes, 2)
	})

	t.Run("Invalid name", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/notes/groups", map[string]string{"name": "bad<>name"}, token)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeBody[validationResponse](t, rr)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "Group name contains invalid characters", resp.Errors[0].Message)
	})

	t.Run("Unicode name", func(t *testing.T) {
		createGroup(t, env, token, "Física, capítulo 2!")
	})

	t.Run("Invalid note ids", func(t *testing.T) {
		for _, ids := range []string{`[0]`, `[3000000000]`, `["3000000000"]`, `[1.5]`, `["abc"]`, `"1,x"`, `{"id":1}`} {
			rr := env.do(t, "POST", "/api/notes/groups", `{"name":"Bad ids","notes_ids":`+ids+`}`, token)
			require.Equal(t, http.StatusBadRequest, rr.Code, ids)

			resp := decodeBody[validationResponse](t, rr)
			require.Len(t, resp.Errors, 1, ids)
			assert.Equal(t, "Each ID must be a positive integer", resp.Errors[0].Message, ids)
			assert.Contains(t, resp.Errors[0].Field, "notes_ids", ids)
		}
	})

	t.Run("Foreign note", func(t *testing.T) {
		otherToken, _ := env.signup(t, "stranger@example.com")
		before := len(env.store.groups)
		rr := env.do(t, "POST", "/api/notes/groups", map[string]any{"name": "Steal", "notes_ids": []int{n1.ID}}, otherToken)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Len(t, env.store.groups, before)
	})
}

func TestListAndRenameGroups(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "rename@example.com")
	otherToken, _ := env.signup(t, "else@example.com")
	g := createGroup(t, env, token, "Draft")
	createGroup(t, env, otherToken, "Not yours")

	t.Run("Lists own groups", func(t *testing.T) {
		resp := decodeBody[groupsResponse](t, env.do(t, "GET", "/api/notes/groups", nil, token))
		require.Len(t, resp.Groups, 1)
		assert.Equal(t, "Draft", resp.Groups[0].Name)
	})

	t.Run("Rename", func(t *testing.T) {
		rr := env.do(t, "PUT", "/api/notes/groups", map[string]any{"name": "Final", "group_id": g.ID}, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Final", decodeBody[models.Group](t, rr).Name)
	})

	t.Run("Rename foreign group", func(t *testing.T) {
		rr := env.do(t, "PUT", "/api/notes/groups", map[string]any{"name": "Mine now", "group_id": g.ID}, otherToken)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Final", env.store.groups[g.ID].Name)
	})
}

func TestDeleteGroups(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "cleanup@example.com")
	otherToken, _ := env.signup(t, "keeper@example.com")
	n := createNote(t, env, token, "Linked")
	g1 := createGroup(t, env, token, "A", n.ID)
	g2 := createGroup(t, env, token, "B", n.ID)
	foreign := createGroup(t, env, otherToken, "C")

	t.Run("Missing ids", func(t *testing.T) {
		rr := env.do(t, "DELETE", "/api/notes/groups", map[string]any{"ids": []int{}}, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Deletes own groups only", func(t *testing.T) {
		rr := env.do(t, "DELETE", "/api/notes/groups", map[string]any{"ids": []int{g1.ID, foreign.ID}}, token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, decodeBody[map[string]int](t, rr)["deleted"])

		assert.NotContains(t, env.store.groups, g1.ID)
		assert.Contains(t, env.store.groups, foreign.ID)
		assert.Zero(t, env.store.linkCount(0, g1.ID))
		assert.Equal(t, 1, env.store.linkCount(0, g2.ID))
		assert.Contains(t, env.store.notes, n.ID)
	})
}

func TestNoteGroupMembership(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "member@example.com")
	otherToken, _ := env.signup(t, "nosy@example.com")
	n := createNote(t, env, token, "Membership")
	g1 := createGroup(t, env, token, "G1")
	g2 := createGroup(t, env, token, "G2")
	g3 := createGroup(t, env, token, "G3")
	foreign := createGroup(t, env, otherToken, "Foreign")

	replace := func(t *testing.T, tok string, noteID int, ids any) *groupsIDs {
		t.Helper()
		rr := env.do(t, "POST", "/api/notes/groupNotes/update", map[string]any{"note_id": noteID, "group_ids": ids}, tok)
		if rr.Code != http.StatusOK {
			return &groupsIDs{status: rr.Code}
		}
		resp := decodeBody[struct {
			Success bool  `json:"success"`
			Groups  []int `json:"groups"`
		}](t, rr)
		assert.True(t, resp.Success)
		return &groupsIDs{status: rr.Code, ids: resp.Groups}
	}

	memberIDs := func(t *testing.T) []int {
		t.Helper()
		rr := env.do(t, "GET", fmt.Sprintf("/api/notes/groupNotes/note/%d", n.ID), nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		return decodeBody[struct {
			Groups []int `json:"groups"`
		}](t, rr).Groups
	}

	t.Run("Replace is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			res := replace(t, token, n.ID, []int{g1.ID, g2.ID, g2.ID})
			require.Equal(t, http.StatusOK, res.status)
			assert.ElementsMatch(t, []int{g1.ID, g2.ID}, res.ids)
			assert.ElementsMatch(t, []int{g1.ID, g2.ID}, memberIDs(t))
		}
	})

	t.Run("Replace swaps membership", func(t *testing.T) {
		res := replace(t, token, n.ID, []int{g3.ID})
		require.Equal(t, http.StatusOK, res.status)
		assert.Equal(t, []int{g3.ID}, memberIDs(t))

		groups := decodeBody[groupsResponse](t, env.do(t, "GET", fmt.Sprintf("/api/notes/groupNotes/note/group/%d", n.ID), nil, token))
		require.Len(t, groups.Groups, 1)
		assert.Equal(t, "G3", groups.Groups[0].Name)

		notes := decodeBody[notesResponse](t, env.do(t, "GET", fmt.Sprintf("/api/notes/groupNotes/%d", g1.ID), nil, token))
		assert.Empty(t, notes.Notes)
	})

	t.Run("Empty list clears membership", func(t *testing.T) {
		res := replace(t, token, n.ID, []int{})
		require.Equal(t, http.StatusOK, res.status)
		assert.Empty(t, memberIDs(t))
	})

	t.Run("Missing group_ids", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/notes/groupNotes/update", map[string]any{"note_id": n.ID}, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Foreign group rolls back", func(t *testing.T) {
		require.Equal(t, http.StatusOK, replace(t, token, n.ID, []int{g1.ID}).status)

		res := replace(t, token, n.ID, []int{g2.ID, foreign.ID})
		assert.Equal(t, http.StatusNotFound, res.status)
		assert.Equal(t, []int{g1.ID}, memberIDs(t))
	})

	t.Run("Foreign note", func(t *testing.T) {
		res := replace(t, otherToken, n.ID, []int{foreign.ID})
		assert.Equal(t, http.StatusNotFound, res.status)
	})

	t.Run("Other users see nothing", func(t *testing.T) {
		rr := env.do(t, "GET", fmt.Sprintf("/api/notes/groupNotes/%d", g1.ID), nil, otherToken)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decodeBody[notesResponse](t, rr).Notes)
	})
}

type groupsIDs struct {
	status int
	ids    []int
}
