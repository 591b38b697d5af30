package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/codelore/backend/internal/server/middleware"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/pkg/extract"
	"github.com/codelore/backend/pkg/graph"
	"github.com/codelore/backend/pkg/rag"
)

type fakeRepositories struct {
	repository  store.Repository
	recordCalls int
	saved       []string
}

func (f *fakeRepositories) GetRepository(ctx context.Context, id string) (store.Repository, error) {
	if id != f.repository.ID {
		return store.Repository{}, store.ErrNotFound
	}
	return f.repository, nil
}

func (f *fakeRepositories) GetRecords(ctx context.Context, repoID string) ([]extract.Record, error) {
	f.recordCalls++
	return nil, nil
}

func (f *fakeRepositories) AddChatMessage(ctx context.Context, repoID string, role string, content string, metadata any) error {
	f.saved = append(f.saved, role)
	return nil
}

func (f *fakeRepositories) CreateRepository(ctx context.Context, name string, url string) (store.Repository, error) {
	return store.Repository{}, nil
}

func (f *fakeRepositories) ListRepositories(ctx context.Context) ([]store.Repository, error) {
	return nil, nil
}

func (f *fakeRepositories) DeleteRepository(ctx context.Context, id string) error {
	return nil
}

func (f *fakeRepositories) GetChatHistory(ctx context.Context, repoID string, limit int) ([]store.ChatMessage, error) {
	return nil, nil
}

type fakeGraph struct {
	loadCalls int
}

func (f *fakeGraph) EnsureLoaded(ctx context.Context, repoName string, records []extract.Record) (bool, error) {
	f.loadCalls++
	return false, nil
}

func (f *fakeGraph) Insights(ctx context.Context) (graph.Insights, error) {
	return graph.Insights{}, nil
}

type fakeAnswerer struct {
	questions []string
}

func (f *fakeAnswerer) Answer(ctx context.Context, repo rag.RepoInfo, question string) (rag.Result, error) {
	f.questions = append(f.questions, question)
	if rag.IsCasual(question) {
		return rag.Result{Answer: rag.CasualReply(question, repo.Name), InteractionType: "casual"}, nil
	}
	return rag.Result{Answer: "The parser tokenizes fixed-width records.", InteractionType: "analytical"}, nil
}

type chatValidator struct {
	v *validator.Validate
}

func (cv chatValidator) Validate(i any) error {
	return cv.v.Struct(i)
}

func newChatRequest(app *middleware.App, question string) (*middleware.AppContext, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = chatValidator{v: validator.New()}

	body := fmt.Sprintf(`{"question": %q}`, question)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("repo_1")
	return &middleware.AppContext{Context: c, App: app}, rec
}

func analyzedRepo() store.Repository {
	return store.Repository{
		ID:     "repo_1",
		Name:   "legacy-billing",
		Status: store.StatusAnalyzed,
	}
}

func TestChatHandlerCasualSkipsGraph(t *testing.T) {
	repos := &fakeRepositories{repository: analyzedRepo()}
	graphLoader := &fakeGraph{}
	engine := &fakeAnswerer{}
	app := &middleware.App{Store: repos, Graph: graphLoader, Engine: engine}

	c, rec := newChatRequest(app, "hi")
	if err := ChatHandler(c); err != nil {
		t.Fatalf("ChatHandler() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if repos.recordCalls != 0 {
		t.Errorf("GetRecords called %d times for small talk, want 0", repos.recordCalls)
	}
	if graphLoader.loadCalls != 0 {
		t.Errorf("EnsureLoaded called %d times for small talk, want 0", graphLoader.loadCalls)
	}
	if len(engine.questions) != 1 {
		t.Fatalf("Answer called %d times, want 1", len(engine.questions))
	}
	if len(repos.saved) != 2 {
		t.Errorf("saved %d chat messages, want 2", len(repos.saved))
	}
}

func TestChatHandlerLoadsGraphForQuestions(t *testing.T) {
	repos := &fakeRepositories{repository: analyzedRepo()}
	graphLoader := &fakeGraph{}
	engine := &fakeAnswerer{}
	app := &middleware.App{Store: repos, Graph: graphLoader, Engine: engine}

	c, rec := newChatRequest(app, "What does the billing parser do?")
	if err := ChatHandler(c); err != nil {
		t.Fatalf("ChatHandler() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if repos.recordCalls != 1 {
		t.Errorf("GetRecords called %d times, want 1", repos.recordCalls)
	}
	if graphLoader.loadCalls != 1 {
		t.Errorf("EnsureLoaded called %d times, want 1", graphLoader.loadCalls)
	}
}

func TestChatHandlerWithoutEngine(t *testing.T) {
	app := &middleware.App{Store: &fakeRepositories{repository: analyzedRepo()}, Graph: &fakeGraph{}}

	c, rec := newChatRequest(app, "hi")
	if err := ChatHandler(c); err != nil {
		t.Fatalf("ChatHandler() error = %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
