package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yamoridev/ideaboard"
	"github.com/yamoridev/ideaboard/internal/config"
	"github.com/yamoridev/ideaboard/internal/present/rest/middleware"
	"github.com/yamoridev/ideaboard/internal/service"
	"github.com/yamoridev/ideaboard/internal/usecase"
)

// --- mocks ---

type mockIdeaRepo struct {
	rows   map[string]ideaboard.Idea
	nextID int
}

func newMockIdeaRepo() *mockIdeaRepo {
	return &mockIdeaRepo{rows: map[string]ideaboard.Idea{}}
}

func (m *mockIdeaRepo) ListAll(ctx context.Context) ([]ideaboard.Idea, error) {
	out := make([]ideaboard.Idea, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

func (m *mockIdeaRepo) Get(ctx context.Context, id string) (ideaboard.Idea, error) {
	row, ok := m.rows[id]
	if !ok {
		return ideaboard.Idea{}, ideaboard.NotFoundError{Resource: "idea"}
	}
	return row, nil
}

func (m *mockIdeaRepo) Create(ctx context.Context, idea ideaboard.Idea) (ideaboard.Idea, error) {
	m.nextID++
	idea.ID = "id-1"
	idea.CreatedAt = time.Now()
	idea.UpdatedAt = idea.CreatedAt
	m.rows[idea.ID] = idea
	return idea, nil
}

func (m *mockIdeaRepo) Update(ctx context.Context, id string, ownerID string, fields map[string]any) (ideaboard.Idea, error) {
	row, ok := m.rows[id]
	if !ok {
		return ideaboard.Idea{}, ideaboard.NotFoundError{Resource: "idea"}
	}
	if row.OwnerID != ownerID {
		return ideaboard.Idea{}, ideaboard.ErrUnauthorized
	}
	if status, ok := fields["status"].(string); ok {
		row.Status = ideaboard.IdeaStatus(status)
	}
	if title, ok := fields["title"].(string); ok {
		row.Title = title
	}
	row.UpdatedAt = time.Now()
	m.rows[id] = row
	return row, nil
}

func (m *mockIdeaRepo) Delete(ctx context.Context, id string, ownerID string) error {
	row, ok := m.rows[id]
	if !ok {
		return ideaboard.NotFoundError{Resource: "idea"}
	}
	if row.OwnerID != ownerID {
		return ideaboard.ErrUnauthorized
	}
	delete(m.rows, id)
	return nil
}

type mockSignal struct {
	events []ideaboard.Event
}

func (m *mockSignal) Publish(ctx context.Context, event ideaboard.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockSignal) Realtime(ctx context.Context, output chan<- ideaboard.Event) {
	<-ctx.Done()
}

// --- helpers ---

type testServer struct {
	e    *echo.Echo
	repo *mockIdeaRepo
	auth *service.AuthService
}

func newTestServer() *testServer {
	repo := newMockIdeaRepo()
	signal := &mockSignal{}
	auth := service.NewAuthService(config.Auth{Secret: "test-secret", TokenTTLHour: 1})
	ideaUC := usecase.NewIdeaUsecase(repo, signal)

	h := NewHandler(ideaUC, auth, signal)
	authMW := middleware.NewAuthMiddleware(auth)

	e := echo.New()
	e.Use(authMW.IdentifyIdentity)
	h.RegisterRoutes(e)

	return &testServer{e: e, repo: repo, auth: auth}
}

func (s *testServer) tokenFor(t *testing.T, id, name string) string {
	t.Helper()
	token, err := s.auth.IssueToken(context.Background(), ideaboard.Identity{ID: id, DisplayName: name})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		serialized, _ := json.Marshal(body)
		reader = bytes.NewReader(serialized)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	s.e.ServeHTTP(res, req)
	return res
}

func createBody() ideaboard.CreateIdeaInput {
	return ideaboard.CreateIdeaInput{
		Title:       "Solar roof tiles",
		Description: "Photovoltaic tiles for ordinary roofing",
		AuthorName:  "Alex",
	}
}

// --- tests ---

func TestHandleRegister(t *testing.T) {
	s := newTestServer()

	res := s.do(http.MethodPost, "/api/v1/register", "", ideaboard.RegisterRequest{
		ID: "u1", DisplayName: "Alex",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	var resp ideaboard.RegisterResponse
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}

	result, err := s.auth.AuthToken(context.Background(), resp.Token)
	if err != nil || result.ID != "u1" {
		t.Fatalf("issued token does not validate: %v", err)
	}
}

func TestHandleCreateRequiresAuth(t *testing.T) {
	s := newTestServer()

	res := s.do(http.MethodPost, "/api/v1/ideas", "", createBody())
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.Code)
	}
	if len(s.repo.rows) != 0 {
		t.Fatalf("expected no row created")
	}
}

func TestHandleCreateIdea(t *testing.T) {
	s := newTestServer()
	token := s.tokenFor(t, "u1", "Alex")

	res := s.do(http.MethodPost, "/api/v1/ideas", token, createBody())
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var created ideaboard.Idea
	if err := json.Unmarshal(res.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.OwnerID != "u1" {
		t.Fatalf("expected owner u1 got %s", created.OwnerID)
	}
	if created.Status != ideaboard.StatusOpen {
		t.Fatalf("expected status open got %s", created.Status)
	}
}

func TestHandleCreateIdeaValidation(t *testing.T) {
	s := newTestServer()
	token := s.tokenFor(t, "u1", "Alex")

	body := createBody()
	body.Title = "ab"

	res := s.do(http.MethodPost, "/api/v1/ideas", token, body)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
	if len(s.repo.rows) != 0 {
		t.Fatalf("expected no row created")
	}
}

func TestHandleStatusOwnership(t *testing.T) {
	s := newTestServer()
	u1 := s.tokenFor(t, "u1", "Alex")
	u2 := s.tokenFor(t, "u2", "Bo")

	res := s.do(http.MethodPost, "/api/v1/ideas", u1, createBody())
	if res.Code != http.StatusOK {
		t.Fatalf("create failed: %d", res.Code)
	}
	var created ideaboard.Idea
	json.Unmarshal(res.Body.Bytes(), &created)

	// Non-owner is rejected.
	res = s.do(http.MethodPut, "/api/v1/ideas/"+created.ID+"/status", u2,
		map[string]string{"status": "completed"})
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.Code)
	}
	if s.repo.rows[created.ID].Status != ideaboard.StatusOpen {
		t.Fatalf("status mutated by non-owner")
	}

	// Owner succeeds.
	res = s.do(http.MethodPut, "/api/v1/ideas/"+created.ID+"/status", u1,
		map[string]string{"status": "in_progress"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if s.repo.rows[created.ID].Status != ideaboard.StatusInProgress {
		t.Fatalf("expected in_progress got %s", s.repo.rows[created.ID].Status)
	}
}

func TestHandleDelete(t *testing.T) {
	s := newTestServer()
	token := s.tokenFor(t, "u1", "Alex")

	res := s.do(http.MethodPost, "/api/v1/ideas", token, createBody())
	var created ideaboard.Idea
	json.Unmarshal(res.Body.Bytes(), &created)

	res = s.do(http.MethodDelete, "/api/v1/ideas/"+created.ID, token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	res = s.do(http.MethodDelete, "/api/v1/ideas/"+created.ID, token, nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated delete got %d", res.Code)
	}
}

func TestHandleListAndGet(t *testing.T) {
	s := newTestServer()
	token := s.tokenFor(t, "u1", "Alex")

	res := s.do(http.MethodPost, "/api/v1/ideas", token, createBody())
	var created ideaboard.Idea
	json.Unmarshal(res.Body.Bytes(), &created)

	res = s.do(http.MethodGet, "/api/v1/ideas", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var ideas []ideaboard.Idea
	if err := json.Unmarshal(res.Body.Bytes(), &ideas); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(ideas) != 1 {
		t.Fatalf("expected 1 idea got %d", len(ideas))
	}

	res = s.do(http.MethodGet, "/api/v1/ideas/"+created.ID, "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	res = s.do(http.MethodGet, "/api/v1/ideas/missing", "", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestHandleUpdateFields(t *testing.T) {
	s := newTestServer()
	u1 := s.tokenFor(t, "u1", "Alex")
	u2 := s.tokenFor(t, "u2", "Bo")

	res := s.do(http.MethodPost, "/api/v1/ideas", u1, createBody())
	var created ideaboard.Idea
	json.Unmarshal(res.Body.Bytes(), &created)

	title := "Improved solar roof tiles"
	res = s.do(http.MethodPatch, "/api/v1/ideas/"+created.ID, u1,
		ideaboard.UpdateIdeaInput{Title: &title})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if s.repo.rows[created.ID].Title != title {
		t.Fatalf("title not updated")
	}

	res = s.do(http.MethodPatch, "/api/v1/ideas/"+created.ID, u2,
		ideaboard.UpdateIdeaInput{Title: &title})
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner edit got %d", res.Code)
	}
}
