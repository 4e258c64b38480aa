package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/monodash/internal/application/todo"
	"github.com/rezkam/monodash/internal/domain"
	"github.com/rezkam/monodash/internal/infrastructure/http/handler"
	"github.com/rezkam/monodash/internal/infrastructure/http/response"
	"github.com/rezkam/monodash/internal/infrastructure/persistence/kvstore"
	"github.com/rezkam/monodash/internal/storage"
	"github.com/rezkam/monodash/internal/storage/memory"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type failingStore struct {
	storage.KeyValue
	setErr error
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.KeyValue.Set(ctx, key, value)
}

func newService(t *testing.T, store storage.KeyValue) *todo.StateService {
	t.Helper()
	repo, err := kvstore.NewRepository(store)
	require.NoError(t, err)
	return todo.NewStateService(repo, todo.Config{Clock: func() time.Time { return testNow }})
}

func newRouter(t *testing.T) (http.Handler, *todo.StateService) {
	t.Helper()
	svc := newService(t, memory.NewStore())
	return handler.NewRouter(svc), svc
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createTodo(t *testing.T, h http.Handler, body string) handler.TodoResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/todos", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handler.TodoResponse](t, rec)
}

func TestCreateTodo(t *testing.T) {
	h, svc := newRouter(t)

	created := createTodo(t, h, `{"title":"  Plan sprint ","note":"Discuss blockers","dueDay":"2025-03-20"}`)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Plan sprint", created.Title)
	require.NotNil(t, created.Note)
	assert.Equal(t, "Discuss blockers", *created.Note)
	require.NotNil(t, created.DueDay)
	assert.Equal(t, "2025-03-20", *created.DueDay)
	assert.False(t, created.IsCompleted)
	assert.Len(t, svc.Items(), 1)
}

func TestCreateTodo_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
		field  string
	}{
		{"invalid json", `{"title":`, http.StatusBadRequest, response.CodeInvalidRequest, ""},
		{"blank title", `{"title":"   "}`, http.StatusBadRequest, response.CodeValidation, "title"},
		{"long title", `{"title":"` + strings.Repeat("a", 121) + `"}`, http.StatusBadRequest, response.CodeValidation, "title"},
		{"long note", `{"title":"A","note":"` + strings.Repeat("n", 501) + `"}`, http.StatusBadRequest, response.CodeValidation, "note"},
		{"past due day", `{"title":"A","dueDay":"2025-03-13"}`, http.StatusBadRequest, response.CodeValidation, "dueDay"},
		{"malformed due day", `{"title":"A","dueDay":"next week"}`, http.StatusBadRequest, response.CodeValidation, "dueDay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newRouter(t)

			rec := do(t, h, http.MethodPost, "/todos", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			body := decode[response.ErrorResponse](t, rec)
			assert.Equal(t, tt.code, body.Error.Code)
			if tt.field != "" {
				require.Len(t, body.Error.Details, 1)
				assert.Equal(t, tt.field, body.Error.Details[0].Field)
			}
			assert.Empty(t, svc.Items())
		})
	}
}

func TestCreateTodo_DuplicateTitle(t *testing.T) {
	h, _ := newRouter(t)
	createTodo(t, h, `{"title":"Write report"}`)

	rec := do(t, h, http.MethodPost, "/todos", `{"title":"write   REPORT"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.CodeDuplicateTitle, decode[response.ErrorResponse](t, rec).Error.Code)
}

func TestCreateTodo_StorageFailure(t *testing.T) {
	svc := newService(t, &failingStore{KeyValue: memory.NewStore(), setErr: errors.New("disk full")})
	h := handler.NewRouter(svc)

	rec := do(t, h, http.MethodPost, "/todos", `{"title":"Write report"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, response.CodeStorageUnavailable, decode[response.ErrorResponse](t, rec).Error.Code)
	assert.Len(t, svc.Items(), 1, "mutation is kept in memory")
}

func TestUpdateTodo(t *testing.T) {
	h, _ := newRouter(t)
	created := createTodo(t, h, `{"title":"Draft","note":"old","dueDay":"2025-03-20"}`)

	rec := do(t, h, http.MethodPut, "/todos/"+created.ID, `{"title":"Final"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[handler.TodoResponse](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Final", updated.Title)
	assert.Nil(t, updated.Note)
	assert.Nil(t, updated.DueDay)
}

func TestUpdateTodo_NotFound(t *testing.T) {
	h, _ := newRouter(t)

	rec := do(t, h, http.MethodPut, "/todos/missing", `{"title":"Final"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.CodeNotFound, decode[response.ErrorResponse](t, rec).Error.Code)
}

func TestToggleAndDelete(t *testing.T) {
	h, svc := newRouter(t)
	created := createTodo(t, h, `{"title":"Write report"}`)

	rec := do(t, h, http.MethodPost, "/todos/"+created.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[handler.TodoResponse](t, rec).IsCompleted)

	rec = do(t, h, http.MethodDelete, "/todos/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, svc.Items())

	rec = do(t, h, http.MethodDelete, "/todos/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/todos/"+created.ID+"/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTodos_Views(t *testing.T) {
	h, _ := newRouter(t)
	done := createTodo(t, h, `{"title":"Done"}`)
	createTodo(t, h, `{"title":"Open"}`)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/todos/"+done.ID+"/toggle", "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/filter", `{"selection":"active"}`).Code)

	rec := do(t, h, http.MethodGet, "/todos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[handler.StateResponse](t, rec)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "Open", state.Items[0].Title)
	assert.Equal(t, "Active", state.Filter.Selection)
	assert.Equal(t, handler.SummaryResponse{Total: 2, Active: 1, Completed: 1, Filter: "Active"}, state.Summary)

	rec = do(t, h, http.MethodGet, "/todos?view=all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state = decode[handler.StateResponse](t, rec)
	require.Len(t, state.Items, 2)
	assert.Equal(t, "Done", state.Items[0].Title)

	rec = do(t, h, http.MethodGet, "/todos?view=archived", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTodos_EmptyIsArray(t *testing.T) {
	h, _ := newRouter(t)

	rec := do(t, h, http.MethodGet, "/todos", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"items":[],"summary":{"total":0,"active":0,"completed":0,"filter":"All"},"filter":{"selection":"All"}}`,
		rec.Body.String())
}

func TestFilterEndpoints(t *testing.T) {
	h, _ := newRouter(t)

	rec := do(t, h, http.MethodGet, "/filter", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selection":"All"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/filter", `{"selection":"Completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selection":"Completed"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/filter", `{"selection":"Archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"active":0,"completed":0,"filter":"Completed"}`, rec.Body.String())
}

func TestReload_PicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newService(t, store)
	h := handler.NewRouter(svc)
	require.NoError(t, svc.Initialize(ctx))

	other := newService(t, store)
	_, err := other.AddTodo(ctx, "Written elsewhere", "", domain.Day{})
	require.NoError(t, err)
	assert.Empty(t, svc.Items())

	rec := do(t, h, http.MethodPost, "/reload", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1,"active":1,"completed":0,"filter":"All"}`, rec.Body.String())
	require.Len(t, svc.Items(), 1)
	assert.Equal(t, "Written elsewhere", svc.Items()[0].Title())
}

func TestEvents_StreamsStateChanges(t *testing.T) {
	svc := newService(t, memory.NewStore())
	server := httptest.NewServer(handler.NewRouter(svc))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	// The subscription is registered before the first frame is flushed.
	_, err = svc.AddTodo(ctx, "Write report", "", domain.Day{})
	require.NoError(t, err)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event:") {
			break
		}
	}
	assert.Equal(t, "event: "+handler.StateChangedEvent+"\n", line)

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data:\n", line)
}
