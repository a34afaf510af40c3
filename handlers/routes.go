package handlers

import (
	"net/http"

	"study-notes/middleware"

	"github.com/go-chi/chi/v5"
)

type Middleware = func(http.Handler) http.Handler

// RouteOptions carries the middleware the API routes are wrapped in. Nil
// limiters are skipped.
type RouteOptions struct {
	RequireAuth  Middleware
	LoginLimiter Middleware
	AILimiter    Middleware
}

func use(r chi.Router, mws ...Middleware) {
	for _, mw := range mws {
		if mw != nil {
			r.Use(mw)
		}
	}
}

// Register mounts the /api/auth, /api/notes and /api/ai routes on r.
func (h *Handler) Register(r chi.Router, opts RouteOptions) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/logout", h.Logout)
		r.Group(func(r chi.Router) {
			use(r, opts.LoginLimiter)
			r.Post("/login", h.Login)
		})
		r.Group(func(r chi.Router) {
			use(r, opts.RequireAuth)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/api/notes", func(r chi.Router) {
		use(r, opts.RequireAuth, middleware.ValidUserID)

		r.Get("/", h.GetNotes)
		r.Post("/", h.CreateNote)
		r.Put("/note/{id}", h.UpdateNote)
		r.Delete("/note/{id}", h.DeleteNote)

		r.Get("/groups", h.GetGroups)
		r.Post("/groups", h.CreateGroup)
		r.Put("/groups", h.RenameGroup)
		r.Delete("/groups", h.DeleteGroups)

		r.Get("/groupNotes/{group_id}", h.GetGroupNotes)
		r.Get("/groupNotes/note/group/{note_id}", h.GetNoteGroups)
		r.Get("/groupNotes/note/{note_id}", h.GetNoteGroupIDs)
		r.Post("/groupNotes/update", h.ReplaceNoteGroups)
	})

	r.Route("/api/ai", func(r chi.Router) {
		use(r, opts.RequireAuth, middleware.ValidUserID, opts.AILimiter)

		r.Post("/ask", h.Ask)
		r.Post("/askNote", h.AskNote)
		r.Get("/summarize", h.SummarizeAll)
		r.Get("/summarize/{id}", h.SummarizeNote)
		r.Post("/summarize/groupNotes", h.SummarizeGroups)
		r.Post("/createNote", h.CreateTitle)
		r.Get("/createQuiz/{id}", h.NoteQuiz)
		r.Post("/createQuiz/group", h.GroupQuiz)
	})
}
