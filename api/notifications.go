package api

import (
	"net/http"
	"strconv"

	"github.com/samuelralak/Emurgis/internal/models"
	"github.com/samuelralak/Emurgis/pkg/repository"
)

type NotificationsHandler struct {
	notifRepo repository.NotificationRepo
}

func NewNotificationsHandler(nr repository.NotificationRepo) *NotificationsHandler {
	return &NotificationsHandler{notifRepo: nr}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit := 50
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	items, err := h.notifRepo.ListByUser(r.Context(), caller, limit, offset)
	if err != nil {
		writeError(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}

	unread, err := h.notifRepo.CountUnreadByUser(r.Context(), caller)
	if err != nil {
		writeError(w, "failed to count notifications", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"unread": unread,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	}, http.StatusOK)
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if err := h.notifRepo.MarkAllRead(r.Context(), caller); err != nil {
		writeError(w, "failed to mark notifications read", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
