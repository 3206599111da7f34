package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/samuelralak/Emurgis/internal/models"
	"github.com/samuelralak/Emurgis/internal/schema"
)

type postCommentRequest struct {
	Comment string `json:"comment"`
}

func (h *ProblemsHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if h.schemas != nil {
		if err := h.schemas.Validate(r.Context(), schema.CommentPostV1, body); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var req postCommentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	c, err := h.svc.PostComment(r.Context(), id, caller, req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, c, http.StatusCreated)
}

func (h *ProblemsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	comments, err := h.svc.Comments(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	writeJSON(w, comments, http.StatusOK)
}
