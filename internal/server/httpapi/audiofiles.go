package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/audiokeeper/internal/logging"
	"github.com/dmitrijs2005/audiokeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type audioFileRequest struct {
	Description *string `json:"description" validate:"omitnil,max=100"`
	Category    *string `json:"category" validate:"omitnil,max=50"`
}

func (req audioFileRequest) input() services.AudioFileInput {
	return services.AudioFileInput{
		Description: req.Description,
		Category:    req.Category,
	}
}

type downloadResponse struct {
	DownloadURL string `json:"download_url"`
}

type audioFileHandlers struct {
	files  AudioFileService
	logger logging.Logger
}

func (h *audioFileHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req audioFileRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	f, err := h.files.Create(r.Context(), subjectFrom(r.Context()), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *audioFileHandlers) list(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context(), subjectFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *audioFileHandlers) get(w http.ResponseWriter, r *http.Request) {
	f, err := h.files.Get(r.Context(), subjectFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *audioFileHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req audioFileRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	f, err := h.files.Update(r.Context(), subjectFrom(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, f)
}

func (h *audioFileHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.files.Delete(r.Context(), subjectFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeDetail(w, http.StatusAccepted, "audio file deleted")
}

func (h *audioFileHandlers) uploadURL(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.files.UploadURL(r.Context(), subjectFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *audioFileHandlers) downloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.files.DownloadURL(r.Context(), subjectFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadResponse{DownloadURL: url})
}
