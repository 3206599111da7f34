package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/samuelralak/Emurgis/api"
	dbfs "github.com/samuelralak/Emurgis/db"
	"github.com/samuelralak/Emurgis/internal/config"
	"github.com/samuelralak/Emurgis/internal/db"
	"github.com/samuelralak/Emurgis/internal/models"
	"github.com/samuelralak/Emurgis/internal/problems"
)

// setupServer starts a full HTTP server over an in-memory database with the
// real router, middleware and request schemas.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	d, err := db.New(ctx, ":memory:", slog.Default())
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Addr:          ":0",
		JWTSecret:     testSecret,
		APITimeout:    15 * time.Second,
		DatabasePath:  ":memory:",
		TokenDuration: time.Hour,
	}

	router, err := api.SetupRoutes(ctx, cfg, "test", "now", d, nil)
	if err != nil {
		t.Fatalf("setup routes: %v", err)
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// signupUser registers a user through the API and returns their token.
func signupUser(t *testing.T, srv *httptest.Server, name, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":"hunter22"}`, name, email)
	resp, err := http.Post(srv.URL+"/v1/auth/signup", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup failed with status %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	return out.Token
}

// doJSON performs an authenticated request and decodes the JSON response
// into out when out is non-nil.
func doJSON(t *testing.T, srv *httptest.Server, method, path, token, body string, out any) int {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = bytes.NewBufferString("{}")
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func createProblemHTTP(t *testing.T, srv *httptest.Server, token string) *models.Problem {
	t.Helper()
	var p models.Problem
	status := doJSON(t, srv, "POST", "/v1/problems", token,
		`{"summary":"Derp","description":"Lorem ipsum, herp derp durr."}`, &p)
	if status != http.StatusCreated {
		t.Fatalf("create problem: expected 201, got %d", status)
	}
	return &p
}

func TestProblemsEndpoints_RequireAuth(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/v1/problems")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}

	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if out.Error != "Must be logged in!" {
		t.Fatalf("unexpected error message: %q", out.Error)
	}
}

func TestCreateProblem_SchemaValidation(t *testing.T) {
	srv := setupServer(t)
	token := signupUser(t, srv, "Alice", "alice@example.com")

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid",
			body:       `{"summary":"Derp","description":"Lorem ipsum, herp derp durr."}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing description",
			body:       `{"summary":"Derp"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unexpected field",
			body:       `{"summary":"Derp","description":"x","bogus":true}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := doJSON(t, srv, "POST", "/v1/problems", token, tt.body, nil)
			if status != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, status)
			}
		})
	}
}

func TestProblemLifecycleOverHTTP(t *testing.T) {
	srv := setupServer(t)
	creatorToken := signupUser(t, srv, "Alice", "alice@example.com")
	claimerToken := signupUser(t, srv, "Bob", "bob@example.com")

	p := createProblemHTTP(t, srv, creatorToken)
	if p.Status != models.StatusOpen {
		t.Fatalf("new problem should be open, got %q", p.Status)
	}
	base := fmt.Sprintf("/v1/problems/%d", p.ID)

	// claimer claims the problem
	var claimed models.Problem
	if status := doJSON(t, srv, "POST", base+"/claim", claimerToken, "", &claimed); status != http.StatusOK {
		t.Fatalf("claim: expected 200, got %d", status)
	}
	if !claimed.Claimed || claimed.ClaimedBy == nil {
		t.Fatalf("problem should be claimed: %+v", claimed)
	}
	claimerID := *claimed.ClaimedBy

	// a second claim conflicts
	if status := doJSON(t, srv, "POST", base+"/claim", creatorToken, "", nil); status != http.StatusConflict {
		t.Fatalf("second claim: expected 409, got %d", status)
	}

	// only the claimer may resolve
	resolveBody := fmt.Sprintf(`{"claimer_id":%d}`, claimerID)
	if status := doJSON(t, srv, "POST", base+"/resolve", creatorToken, resolveBody, nil); status != http.StatusForbidden {
		t.Fatalf("resolve by non-claimer: expected 403, got %d", status)
	}
	var resolved struct {
		ProblemID int64 `json:"problem_id"`
	}
	if status := doJSON(t, srv, "POST", base+"/resolve", claimerToken, resolveBody, &resolved); status != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d", status)
	}
	if resolved.ProblemID != p.ID {
		t.Fatalf("resolve returned wrong problem id: %d", resolved.ProblemID)
	}

	// detail view exposes the lifecycle affordances for the viewer
	var detail struct {
		Problem     *models.Problem      `json:"problem"`
		Subscribers []int64              `json:"subscribers"`
		Affordances problems.Affordances `json:"affordances"`
	}
	if status := doJSON(t, srv, "GET", base, creatorToken, "", &detail); status != http.StatusOK {
		t.Fatalf("get detail: expected 200, got %d", status)
	}
	if detail.Problem.Status != models.StatusReadyForReview {
		t.Fatalf("expected status %q, got %q", models.StatusReadyForReview, detail.Problem.Status)
	}
	if !detail.Affordances.CanClose {
		t.Fatalf("creator should be able to close a problem that is ready for review")
	}

	// creator closes, accepting the claimer's solution
	var closed models.Problem
	if status := doJSON(t, srv, "POST", base+"/status", creatorToken, `{"status":"closed","info":"actually-solved"}`, &closed); status != http.StatusOK {
		t.Fatalf("close: expected 200, got %d", status)
	}
	if closed.Status != models.StatusClosed || !closed.HasAcceptedSolution {
		t.Fatalf("expected closed with accepted solution: %+v", closed)
	}
	if closed.ResolvedBy == nil || *closed.ResolvedBy != claimerID {
		t.Fatalf("expected resolved_by %d: %+v", claimerID, closed)
	}

	// and reopens it
	var reopened models.Problem
	if status := doJSON(t, srv, "POST", base+"/status", creatorToken, `{"status":"open"}`, &reopened); status != http.StatusOK {
		t.Fatalf("reopen: expected 200, got %d", status)
	}
	if reopened.Status != models.StatusOpen {
		t.Fatalf("expected reopened problem, got %q", reopened.Status)
	}
}

func TestWatchAndComments(t *testing.T) {
	srv := setupServer(t)
	creatorToken := signupUser(t, srv, "Alice", "alice@example.com")
	watcherToken := signupUser(t, srv, "Bob", "bob@example.com")

	p := createProblemHTTP(t, srv, creatorToken)
	base := fmt.Sprintf("/v1/problems/%d", p.ID)

	if status := doJSON(t, srv, "POST", base+"/watch", watcherToken, "", nil); status != http.StatusOK {
		t.Fatalf("watch: expected 200, got %d", status)
	}

	var detail struct {
		Subscribers []int64 `json:"subscribers"`
	}
	if status := doJSON(t, srv, "GET", base, watcherToken, "", &detail); status != http.StatusOK {
		t.Fatalf("get detail: expected 200, got %d", status)
	}
	// creator is auto-subscribed, so the watcher makes two
	if len(detail.Subscribers) != 2 {
		t.Fatalf("expected 2 subscribers, got %v", detail.Subscribers)
	}

	if status := doJSON(t, srv, "POST", base+"/unwatch", watcherToken, "", nil); status != http.StatusOK {
		t.Fatalf("unwatch: expected 200, got %d", status)
	}

	// comments
	if status := doJSON(t, srv, "POST", base+"/comments", watcherToken, `{"comment":"no"}`, nil); status != http.StatusBadRequest {
		t.Fatalf("too-short comment: expected 400, got %d", status)
	}
	var c models.Comment
	if status := doJSON(t, srv, "POST", base+"/comments", watcherToken, `{"comment":"Lorem ipsum"}`, &c); status != http.StatusCreated {
		t.Fatalf("post comment: expected 201, got %d", status)
	}
	if c.Comment != "Lorem ipsum" {
		t.Fatalf("unexpected comment: %+v", c)
	}

	var comments []models.Comment
	if status := doJSON(t, srv, "GET", base+"/comments", creatorToken, "", &comments); status != http.StatusOK {
		t.Fatalf("list comments: expected 200, got %d", status)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
}

func TestDeleteProblem_OnlyCreator(t *testing.T) {
	srv := setupServer(t)
	creatorToken := signupUser(t, srv, "Alice", "alice@example.com")
	otherToken := signupUser(t, srv, "Bob", "bob@example.com")

	p := createProblemHTTP(t, srv, creatorToken)
	base := fmt.Sprintf("/v1/problems/%d", p.ID)

	if status := doJSON(t, srv, "DELETE", base, otherToken, "", nil); status != http.StatusForbidden {
		t.Fatalf("delete by non-creator: expected 403, got %d", status)
	}
	if status := doJSON(t, srv, "DELETE", base, creatorToken, "", nil); status != http.StatusOK {
		t.Fatalf("delete by creator: expected 200, got %d", status)
	}
	if status := doJSON(t, srv, "GET", base, creatorToken, "", nil); status != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", status)
	}
}

func TestProblemList_Pagination(t *testing.T) {
	srv := setupServer(t)
	token := signupUser(t, srv, "Alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		createProblemHTTP(t, srv, token)
	}

	var page struct {
		Total  int64            `json:"total"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
		Items  []models.Problem `json:"items"`
	}
	if status := doJSON(t, srv, "GET", "/v1/problems?limit=2", token, "", &page); status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
	if page.Total != 3 || len(page.Items) != 2 {
		t.Fatalf("expected total 3 with 2 items, got total %d with %d items", page.Total, len(page.Items))
	}

	if status := doJSON(t, srv, "GET", "/v1/problems?limit=2&offset=2", token, "", &page); status != http.StatusOK {
		t.Fatalf("list page 2: expected 200, got %d", status)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 item on the last page, got %d", len(page.Items))
	}
}

func TestNotificationsEndpoints(t *testing.T) {
	srv := setupServer(t)
	token := signupUser(t, srv, "Alice", "alice@example.com")

	var page struct {
		Unread int64                 `json:"unread"`
		Items  []models.Notification `json:"items"`
	}
	if status := doJSON(t, srv, "GET", "/v1/notifications", token, "", &page); status != http.StatusOK {
		t.Fatalf("list notifications: expected 200, got %d", status)
	}
	if page.Unread != 0 || len(page.Items) != 0 {
		t.Fatalf("expected no notifications for a fresh user, got %+v", page)
	}

	req, err := http.NewRequest("POST", srv.URL+"/v1/notifications/read", bytes.NewBufferString("{}"))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("mark read: expected 204, got %d", resp.StatusCode)
	}
}
