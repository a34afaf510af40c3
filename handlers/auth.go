package handlers

import (
	"errors"
	"net/http"
	"strings"

	"study-notes/auth"
	"study-notes/store"

	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72,maxbytes=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) issueToken(w http.ResponseWriter, userID int, email string) (string, error) {
	token, expiresAt, err := h.issuer.Sign(userID, email)
	if err != nil {
		return "", err
	}
	auth.SetCookie(w, token, expiresAt, h.cfg.CookieSecure)
	return token, nil
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req, func() { req.Email = strings.ToLower(strings.TrimSpace(req.Email)) }) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cfg.BcryptCost)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Email, string(hash))
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	token, err := h.issueToken(w, user.ID, user.Email)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.log.WithField("user_id", user.ID).Info("user signed up")
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req, func() { req.Email = strings.ToLower(strings.TrimSpace(req.Email)) }) {
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.internalError(w, r, err)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		bcrypt.CompareHashAndPassword(h.dummyHash, []byte(req.Password))
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.issueToken(w, user.ID, user.Email)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Me returns the verified claims of the caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": claims})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w, h.cfg.CookieSecure)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
