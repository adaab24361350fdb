package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/audiokeeper/internal/logging"
	"github.com/dmitrijs2005/audiokeeper/internal/server/services"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=20"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
	FullName string `json:"full_name" validate:"max=50"`
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateRequest struct {
	Username *string `json:"username" validate:"omitnil,min=1,max=20"`
	Email    *string `json:"email" validate:"omitnil,email,max=320"`
	FullName *string `json:"full_name" validate:"omitnil,max=50"`
}

type accountHandlers struct {
	accounts AccountService
	logger   logging.Logger
}

func (h *accountHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// token accepts JSON or an OAuth2-style password form.
func (h *accountHandlers) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	tok, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, tok)
}

func (h *accountHandlers) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Me(r.Context(), subjectFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *accountHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.accounts.UpdateMe(r.Context(), subjectFrom(r.Context()), services.UpdateInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, user)
}

func (h *accountHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteMe(r.Context(), subjectFrom(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeDetail(w, http.StatusAccepted, "account deleted")
}
