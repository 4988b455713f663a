package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramanasai/amal/internal/app"
	"github.com/ramanasai/amal/internal/tracker"
)

const day = "2025-03-03"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type harness struct {
	t      *testing.T
	srv    *Server
	now    time.Time
	nextID int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &harness{t: t, now: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)}
	ctrl := app.New(tracker.Store{}, app.WithClock(func() time.Time { return h.now }))
	h.srv = NewServer(ctrl, WithIDs(func() string {
		h.nextID++
		return fmt.Sprintf("id-%d", h.nextID)
	}))
	return h
}

func (h *harness) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(h.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/yaml" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (h *harness) create(title string) tracker.Task {
	h.t.Helper()
	w, env := h.do(http.MethodPost, "/api/days/"+day+"/tasks", gin.H{"title": title})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	var task tracker.Task
	require.NoError(h.t, json.Unmarshal(env.Data, &task))
	return task
}

func TestCreateAndListTasks(t *testing.T) {
	h := newHarness(t)
	task := h.create("read")
	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, tracker.StatusPending, task.Status)

	w, env := h.do(http.MethodGet, "/api/days/"+day+"/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []tracker.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "read", tasks[0].Title)
}

func TestCreateTask_Validation(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(http.MethodPost, "/api/days/"+day+"/tasks", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, _ = h.do(http.MethodPost, "/api/days/03-03-2025/tasks", gin.H{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(http.MethodPost, "/api/days/"+day+"/tasks", gin.H{"title": "x", "category": "Gaming"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = h.do(http.MethodPost, "/api/days/"+day+"/tasks", gin.H{"title": "x", "target_sessions": 20})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "between 0 and 16")
}

func TestUpdateTask(t *testing.T) {
	h := newHarness(t)
	h.create("read")

	w, env := h.do(http.MethodPatch, "/api/days/"+day+"/tasks/id-1",
		gin.H{"title": "read more", "status": "completed", "category": "study", "target_sessions": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var task tracker.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "read more", task.Title)
	assert.Equal(t, tracker.StatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)
	require.NotNil(t, task.Category)
	assert.Equal(t, "Study", task.Category.Label)

	w, _ = h.do(http.MethodPatch, "/api/days/"+day+"/tasks/id-1", gin.H{"target_sessions": 17})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = h.do(http.MethodPatch, "/api/days/"+day+"/tasks/missing", gin.H{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSession_StartConflictStop(t *testing.T) {
	h := newHarness(t)
	h.create("a")
	h.create("b")

	w, _ := h.do(http.MethodPost, "/api/days/"+day+"/tasks/id-1/session", gin.H{"action": "start"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := h.do(http.MethodPost, "/api/days/"+day+"/tasks/id-2/session", gin.H{"action": "start"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)

	w, env = h.do(http.MethodPost, "/api/days/"+day+"/tasks/id-1/session", gin.H{"action": "stop"})
	require.Equal(t, http.StatusOK, w.Code)
	var task tracker.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Empty(t, task.Sessions)
	assert.Equal(t, tracker.StatusPending, task.Status)

	w, _ = h.do(http.MethodPost, "/api/days/"+day+"/tasks/id-1/session", gin.H{"action": "stop"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = h.do(http.MethodPost, "/api/days/"+day+"/tasks/id-1/session", gin.H{"action": "pause"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCopyMoveDelete(t *testing.T) {
	h := newHarness(t)
	h.create("a")
	h.create("b")

	w, env := h.do(http.MethodPost, "/api/days/"+day+"/tasks/id-1/copy", gin.H{"to": "2025-03-04"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var copied tracker.Task
	require.NoError(t, json.Unmarshal(env.Data, &copied))
	assert.Equal(t, "id-3", copied.ID)
	assert.Equal(t, "a", copied.Title)

	w, env = h.do(http.MethodPost, "/api/days/"+day+"/tasks/id-2/move", gin.H{"to": 0})
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []tracker.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Equal(t, "b", tasks[0].Title)

	w, env = h.do(http.MethodDelete, "/api/days/"+day+"/tasks/id-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Len(t, tasks, 1)
}

func TestSubTasks(t *testing.T) {
	h := newHarness(t)
	h.create("a")
	base := "/api/days/" + day + "/tasks/id-1/subtasks"

	w, _ := h.do(http.MethodPost, base, gin.H{"title": "first"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = h.do(http.MethodPost, base, gin.H{"title": "second"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := h.do(http.MethodPatch, base+"/id-2", gin.H{"checked": true})
	require.Equal(t, http.StatusOK, w.Code)
	var task tracker.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.True(t, task.SubTasks[0].Checked)

	w, env = h.do(http.MethodPost, base+"/id-3/move", gin.H{"to": 0})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "second", task.SubTasks[0].Title)

	w, _ = h.do(http.MethodDelete, base+"/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = h.do(http.MethodDelete, base+"/id-2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Len(t, task.SubTasks, 1)

	w, _ = h.do(http.MethodPost, base, gin.H{"title": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.create("a")
	h.do(http.MethodPost, "/api/days/"+day+"/tasks/id-1/session", gin.H{"action": "start"})
	h.now = h.now.Add(30 * time.Minute)

	w, env := h.do(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Summary tracker.DaySummary `json:"summary"`
		Streak  tracker.Streak     `json:"streak"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Summary.Sessions)
	assert.Equal(t, 1, stats.Streak.Current)

	w, _ = h.do(http.MethodGet, "/api/stats?day=bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportImport(t *testing.T) {
	h := newHarness(t)
	h.create("a")

	w, _ := h.do(http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()
	assert.Contains(t, exported, `"2025-03-03"`)

	w, _ = h.do(http.MethodGet, "/api/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "title: a")

	w, env := h.do(http.MethodPost, "/api/import", `{"2025-03-05": [{"id": "x"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "invalid import data")

	w, _ = h.do(http.MethodPost, "/api/import", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(http.MethodPost, "/api/import",
		`{"2025-03-05": [{"id": "x", "title": "imported", "created_at": "2025-03-05T08:00:00Z"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = h.do(http.MethodGet, "/api/days", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var days []tracker.DaySummary
	require.NoError(t, json.Unmarshal(env.Data, &days))
	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-05", days[1].Day)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(tracker.ErrTaskActive))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(fmt.Errorf("wrap: %w", tracker.ErrTargetOutOfRange)))
	assert.Equal(t, http.StatusBadRequest, statusFor(tracker.ErrInvalidImport))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
