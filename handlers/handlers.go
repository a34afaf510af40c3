package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"study-notes/auth"
	"study-notes/models"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence the handlers need. Every note and group method
// is scoped to userID.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	ListNotes(ctx context.Context, userID, limit, offset int) ([]models.Note, int, error)
	AllNotes(ctx context.Context, userID int) ([]models.Note, error)
	GetNote(ctx context.Context, userID, noteID int) (models.Note, error)
	CreateNote(ctx context.Context, userID int, title, content string, groupIDs []int) (models.Note, error)
	UpdateNote(ctx context.Context, userID, noteID int, title, content string) (models.Note, error)
	DeleteNote(ctx context.Context, userID, noteID int) (models.Note, error)

	ListGroups(ctx context.Context, userID int) ([]models.Group, error)
	CreateGroup(ctx context.Context, userID int, name string, noteIDs []int) (models.Group, error)
	RenameGroup(ctx context.Context, userID, groupID int, name string) (models.Group, error)
	DeleteGroups(ctx context.Context, userID int, ids []int) (int, error)

	NotesInGroup(ctx context.Context, userID, groupID int) ([]models.Note, error)
	NotesInGroups(ctx context.Context, userID int, groupIDs []int) ([]models.Note, error)
	GroupsForNote(ctx context.Context, userID, noteID int) ([]models.Group, error)
	GroupIDsForNote(ctx context.Context, userID, noteID int) ([]int, error)
	ReplaceNoteGroups(ctx context.Context, userID, noteID int, groupIDs []int) ([]int, error)
}

// Assistant provides the AI study features.
type Assistant interface {
	Ask(ctx context.Context, question, instruction string) (string, error)
	AskAboutNotes(ctx context.Context, notes []models.Note, question string) (string, error)
	Summarize(ctx context.Context, notes []models.Note) (string, error)
	Title(ctx context.Context, text string) (string, error)
	NoteQuiz(ctx context.Context, note models.Note) (*models.Quiz, error)
	GroupQuiz(ctx context.Context, notes []models.Note) (*models.Quiz, error)
}

type Config struct {
	BcryptCost   int
	CookieSecure bool
}

type Handler struct {
	store     Store
	ai        Assistant
	issuer    *auth.Issuer
	log       logrus.FieldLogger
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	cfg       Config
	dummyHash []byte
}

func New(store Store, assistant Assistant, issuer *auth.Issuer, log logrus.FieldLogger, cfg Config) (*Handler, error) {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	// Compared against when a login names an unknown email, so both
	// failure paths cost one bcrypt comparison.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt cost %d: %w", cfg.BcryptCost, err)
	}
	return &Handler{
		store:     store,
		ai:        assistant,
		issuer:    issuer,
		log:       log,
		validate:  newValidator(),
		sanitizer: bluemonday.UGCPolicy(),
		cfg:       cfg,
		dummyHash: dummy,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError logs err with request context and answers with a generic 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"method":  r.Method,
		"path":    r.URL.Path,
		"user_id": auth.UserID(r.Context()),
	}).Error("request failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func getUserID(r *http.Request) int {
	return auth.UserID(r.Context())
}
