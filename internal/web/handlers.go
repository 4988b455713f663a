package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ramanasai/amal/internal/tracker"
)

var (
	errTaskNotFound    = errors.New("task not found")
	errSubTaskNotFound = errors.New("subtask not found")
)

type createTaskRequest struct {
	Title          string `json:"title" binding:"required"`
	Category       string `json:"category"`
	TargetSessions int    `json:"target_sessions"`
}

type updateTaskRequest struct {
	Title          *string         `json:"title"`
	Status         *tracker.Status `json:"status"`
	TargetSessions *int            `json:"target_sessions"`
	// Category is a palette label; an empty string clears it.
	Category *string `json:"category"`
}

type subTaskRequest struct {
	Title    *string `json:"title"`
	Checked  *bool   `json:"checked"`
	Category *string `json:"category"`
}

type copyRequest struct {
	To string `json:"to"`
}

type moveRequest struct {
	To int `json:"to"`
}

type sessionRequest struct {
	// Action is one of start, stop or complete.
	Action string `json:"action" binding:"required"`
}

func (s *Server) requireDay(c *gin.Context) {
	if _, err := tracker.ParseDay(c.Param("day")); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	c.Next()
}

func category(label *string) (*tracker.Category, bool, error) {
	if label == nil {
		return nil, false, nil
	}
	if strings.TrimSpace(*label) == "" {
		return nil, true, nil
	}
	cat, err := tracker.LookupCategory(*label)
	if err != nil {
		return nil, false, err
	}
	return &cat, false, nil
}

// dispatch runs a and writes either data or the mapped error.
func (s *Server) dispatch(c *gin.Context, a tracker.Action, code int, data func(tracker.Store) any) {
	state, err := s.ctrl.Dispatch(a)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	ok(c, code, data(state))
}

func (s *Server) findTask(c *gin.Context) (tracker.Task, int, bool) {
	day, id := c.Param("day"), c.Param("id")
	for i, t := range s.ctrl.Day(day) {
		if t.ID == id {
			return t, i, true
		}
	}
	fail(c, http.StatusNotFound, fmt.Errorf("%w: %s", errTaskNotFound, id))
	return tracker.Task{}, -1, false
}

func taskIn(state tracker.Store, day, id string) any {
	if _, i, found := state.Find(day, id); found {
		return state[day][i]
	}
	return nil
}

func (s *Server) handleDays(c *gin.Context) {
	ok(c, http.StatusOK, s.ctrl.History())
}

func (s *Server) handleStats(c *gin.Context) {
	day := c.DefaultQuery("day", tracker.DayKey(s.ctrl.Now()))
	if _, err := tracker.ParseDay(day); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"summary": s.ctrl.Summary(day),
		"streak":  s.ctrl.Streak(),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	if c.Query("format") == "yaml" {
		b, err := s.ctrl.ExportYAML()
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		c.Data(http.StatusOK, "application/yaml", b)
		return
	}
	b, err := s.ctrl.Export()
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "application/json", b)
}

func (s *Server) handleImport(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if len(body) > maxImportSize {
		fail(c, http.StatusRequestEntityTooLarge, errors.New("import exceeds maximum size of 8MB"))
		return
	}
	if err := s.ctrl.Import(body); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	ok(c, http.StatusOK, s.ctrl.History())
}

func (s *Server) handleListTasks(c *gin.Context) {
	ok(c, http.StatusOK, s.ctrl.Day(c.Param("day")))
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	label := req.Category
	cat, _, err := category(&label)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	day, id := c.Param("day"), s.newID()
	s.dispatch(c, tracker.AddTask{Day: day, ID: id, Title: req.Title, Category: cat, Target: req.TargetSessions},
		http.StatusCreated, func(st tracker.Store) any { return taskIn(st, day, id) })
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if _, _, found := s.findTask(c); !found {
		return
	}
	cat, clearCat, err := category(req.Category)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	day, id := c.Param("day"), c.Param("id")
	patch := tracker.TaskPatch{
		Title:          req.Title,
		Status:         req.Status,
		TargetSessions: req.TargetSessions,
		Category:       cat,
		ClearCategory:  clearCat,
	}
	s.dispatch(c, tracker.UpdateTask{ID: id, Day: day, Patch: patch},
		http.StatusOK, func(st tracker.Store) any { return taskIn(st, day, id) })
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if _, _, found := s.findTask(c); !found {
		return
	}
	day, id := c.Param("day"), c.Param("id")
	s.dispatch(c, tracker.DeleteTask{ID: id, Day: day},
		http.StatusOK, func(st tracker.Store) any { return st[day] })
}

func (s *Server) handleCopyTask(c *gin.Context) {
	var req copyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if _, _, found := s.findTask(c); !found {
		return
	}
	to := req.To
	if to == "" {
		to = tracker.DayKey(s.ctrl.Now())
	}
	newID := s.newID()
	s.dispatch(c, tracker.CopyTask{ID: c.Param("id"), From: c.Param("day"), To: to, NewID: newID},
		http.StatusCreated, func(st tracker.Store) any { return taskIn(st, to, newID) })
}

func (s *Server) handleMoveTask(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	_, from, found := s.findTask(c)
	if !found {
		return
	}
	day := c.Param("day")
	s.dispatch(c, tracker.MoveTask{Day: day, From: from, To: req.To},
		http.StatusOK, func(st tracker.Store) any { return st[day] })
}

func (s *Server) handleSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	task, _, found := s.findTask(c)
	if !found {
		return
	}
	day, id := c.Param("day"), c.Param("id")
	var a tracker.Action
	switch req.Action {
	case "start":
		a = tracker.UpdateSession{TaskID: id, Day: day}
	case "stop":
		if !tracker.Running(task, s.ctrl.Now(), s.ctrl.SessionLength()) {
			fail(c, http.StatusConflict, errors.New("no running session to stop"))
			return
		}
		a = tracker.UpdateSession{TaskID: id, Day: day, Stamp: task.LastSession()}
	case "complete":
		a = tracker.CompleteSession{TaskID: id, Day: day}
	default:
		fail(c, http.StatusBadRequest, fmt.Errorf("unknown session action %q", req.Action))
		return
	}
	s.dispatch(c, a, http.StatusOK, func(st tracker.Store) any { return taskIn(st, day, id) })
}

func (s *Server) handleCreateSubTask(c *gin.Context) {
	var req subTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		fail(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}
	if _, _, found := s.findTask(c); !found {
		return
	}
	cat, _, err := category(req.Category)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	day, id := c.Param("day"), c.Param("id")
	s.dispatch(c, tracker.AddSubTask{TaskID: id, Day: day, ID: s.newID(), Title: *req.Title, Category: cat},
		http.StatusCreated, func(st tracker.Store) any { return taskIn(st, day, id) })
}

func (s *Server) findSubTask(c *gin.Context, t tracker.Task) (int, bool) {
	for i, st := range t.SubTasks {
		if st.ID == c.Param("sub") {
			return i, true
		}
	}
	fail(c, http.StatusNotFound, fmt.Errorf("%w: %s", errSubTaskNotFound, c.Param("sub")))
	return -1, false
}

func (s *Server) handleUpdateSubTask(c *gin.Context) {
	var req subTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	task, _, found := s.findTask(c)
	if !found {
		return
	}
	if _, found := s.findSubTask(c, task); !found {
		return
	}
	cat, clearCat, err := category(req.Category)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	day, id := c.Param("day"), c.Param("id")
	patch := tracker.SubTaskPatch{Title: req.Title, Checked: req.Checked, Category: cat, ClearCategory: clearCat}
	s.dispatch(c, tracker.UpdateSubTask{TaskID: id, Day: day, SubID: c.Param("sub"), Patch: patch},
		http.StatusOK, func(st tracker.Store) any { return taskIn(st, day, id) })
}

func (s *Server) handleDeleteSubTask(c *gin.Context) {
	task, _, found := s.findTask(c)
	if !found {
		return
	}
	if _, found := s.findSubTask(c, task); !found {
		return
	}
	day, id := c.Param("day"), c.Param("id")
	s.dispatch(c, tracker.DeleteSubTask{TaskID: id, Day: day, SubID: c.Param("sub")},
		http.StatusOK, func(st tracker.Store) any { return taskIn(st, day, id) })
}

func (s *Server) handleMoveSubTask(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	task, _, found := s.findTask(c)
	if !found {
		return
	}
	from, found := s.findSubTask(c, task)
	if !found {
		return
	}
	day, id := c.Param("day"), c.Param("id")
	s.dispatch(c, tracker.MoveSubTask{TaskID: id, Day: day, From: from, To: req.To},
		http.StatusOK, func(st tracker.Store) any { return taskIn(st, day, id) })
}
