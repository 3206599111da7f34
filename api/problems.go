package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/samuelralak/Emurgis/internal/models"
	"github.com/samuelralak/Emurgis/internal/problems"
	"github.com/samuelralak/Emurgis/internal/schema"
)

type ProblemsHandler struct {
	svc     *problems.Service
	schemas *schema.Loader
}

// NewProblemsHandler creates the handler for problem lifecycle endpoints.
// schemas may be nil; structural request validation is then skipped.
func NewProblemsHandler(svc *problems.Service, schemas *schema.Loader) *ProblemsHandler {
	return &ProblemsHandler{svc: svc, schemas: schemas}
}

func problemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

type createProblemRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Solution    string `json:"solution,omitempty"`
}

func (h *ProblemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if h.schemas != nil {
		if err := h.schemas.Validate(r.Context(), schema.ProblemCreateV1, body); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var req createProblemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Create(r.Context(), caller, req.Summary, req.Description, req.Solution)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, p, http.StatusCreated)
}

func (h *ProblemsHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
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

	items, total, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []models.Problem{}
	}

	writeJSON(w, map[string]any{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	}, http.StatusOK)
}

type problemDetailResponse struct {
	Problem     *models.Problem      `json:"problem"`
	Subscribers []int64              `json:"subscribers"`
	Affordances problems.Affordances `json:"affordances"`
}

func (h *ProblemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	subs, err := h.svc.Subscribers(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, problemDetailResponse{
		Problem:     p,
		Subscribers: subs,
		Affordances: problems.AffordancesFor(p, subs, caller),
	}, http.StatusOK)
}

func (h *ProblemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id, caller); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, map[string]any{"deleted": id}, http.StatusOK)
}

func (h *ProblemsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Claim(r.Context(), id, caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

func (h *ProblemsHandler) Unclaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Unclaim(r.Context(), id, caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

type resolveRequest struct {
	ClaimerID int64 `json:"claimer_id"`
}

type resolveResponse struct {
	ProblemID int64 `json:"problem_id"`
}

// Resolve marks the problem ready for review. The body carries the claimer
// the client believes owns the problem; the service verifies it against both
// the stored claimer and the authenticated caller.
func (h *ProblemsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	resolvedID, err := h.svc.MarkAsResolved(r.Context(), id, req.ClaimerID, caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, resolveResponse{ProblemID: resolvedID}, http.StatusOK)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Info   string `json:"info,omitempty"`
}

func (h *ProblemsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	p, err := h.svc.UpdateStatus(r.Context(), id, req.Status, req.Info, caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

func (h *ProblemsHandler) Watch(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Watch(r.Context(), id, caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

func (h *ProblemsHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := problemID(r)
	if !ok {
		writeError(w, "invalid problem id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Unwatch(r.Context(), id, caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, p, http.StatusOK)
}
