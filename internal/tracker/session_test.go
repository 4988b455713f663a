package tracker

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoTasks(t *testing.T, env Env) Store {
	t.Helper()
	s := mustReduce(t, Store{}, AddTask{Day: "2025-03-03", Title: "a"}, env)
	return mustReduce(t, s, AddTask{Day: "2025-03-03", Title: "b"}, env)
}

func TestUpdateSession_StartAndStop(t *testing.T) {
	env := testEnv(monday)
	s := twoTasks(t, env)

	s = mustReduce(t, s, UpdateSession{TaskID: "id-1", Day: "2025-03-03"}, env)
	task := s["2025-03-03"][0]
	assert.Equal(t, StatusProgress, task.Status)
	require.Len(t, task.Sessions, 1)
	assert.Equal(t, SessionStamp(monday), task.Sessions[0])

	s = mustReduce(t, s, UpdateSession{TaskID: "id-1", Day: "2025-03-03", Stamp: task.Sessions[0]}, env)
	task = s["2025-03-03"][0]
	assert.Equal(t, StatusPending, task.Status)
	assert.Empty(t, task.Sessions)
}

func TestUpdateSession_RejectsSecondActiveTask(t *testing.T) {
	env := testEnv(monday)
	s := twoTasks(t, env)
	s = mustReduce(t, s, UpdateSession{TaskID: "id-1", Day: "2025-03-03"}, env)

	next, err := Reduce(s, UpdateSession{TaskID: "id-2", Day: "2025-03-03"}, env)
	assert.ErrorIs(t, err, ErrTaskActive)
	assert.Empty(t, next["2025-03-03"][1].Sessions)

	env.Now = monday.Add(10 * time.Minute)
	_, err = Reduce(s, UpdateSession{TaskID: "id-1", Day: "2025-03-03"}, env)
	assert.ErrorIs(t, err, ErrTaskActive)

	_, err = Reduce(s, UpdateTask{ID: "id-2", Day: "2025-03-03", Patch: TaskPatch{Status: statusPtr(StatusProgress)}}, env)
	assert.ErrorIs(t, err, ErrTaskActive)
}

func TestUpdateSession_StopClearsCompletedAt(t *testing.T) {
	env := testEnv(monday)
	s := twoTasks(t, env)
	s = mustReduce(t, s, UpdateSession{TaskID: "id-1", Day: "2025-03-03"}, env)
	stamp := s["2025-03-03"][0].LastSession()

	env.Now = monday.Add(10 * time.Minute)
	s = mustReduce(t, s, UpdateTask{ID: "id-1", Day: "2025-03-03", Patch: TaskPatch{Status: statusPtr(StatusCompleted)}}, env)
	require.NotNil(t, s["2025-03-03"][0].CompletedAt)

	s = mustReduce(t, s, UpdateSession{TaskID: "id-1", Day: "2025-03-03", Stamp: stamp}, env)
	task := s["2025-03-03"][0]
	assert.Equal(t, StatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.Empty(t, task.Sessions)
}

func TestUpdateTask_ProgressStartsSession(t *testing.T) {
	env := testEnv(monday)
	s := twoTasks(t, env)

	s = mustReduce(t, s, UpdateTask{ID: "id-1", Day: "2025-03-03", Patch: TaskPatch{Status: statusPtr(StatusProgress)}}, env)
	task := s["2025-03-03"][0]
	assert.Equal(t, StatusProgress, task.Status)
	assert.Equal(t, []string{SessionStamp(monday)}, task.Sessions)

	// patching a running task again does not stack sessions
	s = mustReduce(t, s, UpdateTask{ID: "id-1", Day: "2025-03-03", Patch: TaskPatch{Status: statusPtr(StatusProgress)}}, env)
	assert.Len(t, s["2025-03-03"][0].Sessions, 1)

	env.Now = monday.Add(DefaultSessionLength)
	settled, done := Settle(s, env)
	require.Len(t, done, 1)
	assert.Equal(t, StatusPending, settled["2025-03-03"][0].Status)
	assert.NoError(t, startOn(settled, "id-2", env))
}

func TestStaleProgressDoesNotBlock(t *testing.T) {
	env := testEnv(monday)
	s := Store{"2025-03-03": {
		{ID: "a", Status: StatusProgress, Sessions: []string{}, SubTasks: []SubTask{}},
		{ID: "b", Status: StatusPending, Sessions: []string{}, SubTasks: []SubTask{}},
	}}

	assert.False(t, Running(s["2025-03-03"][0], monday, DefaultSessionLength))
	assert.NoError(t, startOn(s, "b", env))

	settled, done := Settle(s, env)
	assert.Empty(t, done)
	assert.Equal(t, StatusPending, settled["2025-03-03"][0].Status)
	assert.Equal(t, StatusProgress, s["2025-03-03"][0].Status)
}

func startOn(s Store, id string, env Env) error {
	_, err := Reduce(s, UpdateSession{TaskID: id, Day: "2025-03-03"}, env)
	return err
}

func TestUpdateSession_StartAfterPreviousFinished(t *testing.T) {
	env := testEnv(monday)
	s := twoTasks(t, env)
	s = mustReduce(t, s, UpdateSession{TaskID: "id-1", Day: "2025-03-03"}, env)

	env.Now = monday.Add(DefaultSessionLength)
	s = mustReduce(t, s, UpdateSession{TaskID: "id-2", Day: "2025-03-03"}, env)

	assert.Equal(t, StatusPending, s["2025-03-03"][0].Status)
	assert.Len(t, s["2025-03-03"][0].Sessions, 1)
	assert.Equal(t, StatusProgress, s["2025-03-03"][1].Status)
}

func TestUpdateSession_BadStamp(t *testing.T) {
	env := testEnv(monday)
	s := twoTasks(t, env)
	_, err := Reduce(s, UpdateSession{TaskID: "id-1", Stamp: "yesterday"}, env)
	assert.ErrorIs(t, err, ErrInvalidStamp)
}

func TestUpdateSession_AtMostOneProgress(t *testing.T) {
	env := testEnv(monday)
	s := Store{}
	for i := 0; i < 5; i++ {
		s = mustReduce(t, s, AddTask{Day: "2025-03-03", Title: "t"}, env)
	}
	rng := rand.New(rand.NewSource(7))
	for step := 0; step < 300; step++ {
		env.Now = env.Now.Add(time.Duration(rng.Intn(20)) * time.Minute)
		task := s["2025-03-03"][rng.Intn(5)]
		stamp := ""
		if rng.Intn(3) == 0 {
			stamp = task.LastSession()
		}
		if next, err := Reduce(s, UpdateSession{TaskID: task.ID, Day: "2025-03-03", Stamp: stamp}, env); err == nil {
			s = next
		}

		progress := 0
		for _, tk := range s["2025-03-03"] {
			if tk.Status == StatusProgress {
				progress++
			}
		}
		require.LessOrEqual(t, progress, 1, "step %d", step)
		require.LessOrEqual(t, runningCount(s, env), 1)
	}
}

func TestSettle(t *testing.T) {
	env := testEnv(monday)
	s := twoTasks(t, env)
	s = mustReduce(t, s, UpdateSession{TaskID: "id-1", Day: "2025-03-03"}, env)

	env.Now = monday.Add(24 * time.Minute)
	same, settled := Settle(s, env)
	assert.Empty(t, settled)
	assert.Equal(t, StatusProgress, same["2025-03-03"][0].Status)
	assert.Equal(t, time.Minute, Remaining(same["2025-03-03"][0], env.Now, env.SessionLength))

	env.Now = monday.Add(25 * time.Minute)
	next, settled := Settle(s, env)
	require.Len(t, settled, 1)
	assert.Equal(t, "id-1", settled[0].Task.ID)
	assert.Equal(t, StatusPending, settled[0].Task.Status)
	assert.Equal(t, StatusPending, next["2025-03-03"][0].Status)
	assert.Len(t, next["2025-03-03"][0].Sessions, 1)
	assert.Equal(t, StatusProgress, s["2025-03-03"][0].Status)
}

func TestCompleteSession(t *testing.T) {
	env := testEnv(monday)
	s := twoTasks(t, env)
	s = mustReduce(t, s, UpdateSession{TaskID: "id-1", Day: "2025-03-03"}, env)
	s = mustReduce(t, s, CompleteSession{TaskID: "id-1", Day: "2025-03-03"}, env)

	assert.Equal(t, StatusPending, s["2025-03-03"][0].Status)
	assert.Len(t, s["2025-03-03"][0].Sessions, 1)
}

func TestSessionDuration_PartialCreditOnCompletion(t *testing.T) {
	completed := time.Date(2025, 3, 3, 9, 10, 0, 0, time.UTC)
	task := Task{
		Status:      StatusCompleted,
		Sessions:    []string{"2025-03-03T08:00:00Z", "2025-03-03T09:00:00Z"},
		CompletedAt: &completed,
	}
	now := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 25*time.Minute, SessionDuration(task, 0, now, DefaultSessionLength))
	assert.Equal(t, 10*time.Minute, SessionDuration(task, 1, now, DefaultSessionLength))
	assert.Equal(t, 35*time.Minute, FocusTime(task, now, DefaultSessionLength))

	task.Status = StatusPending
	assert.Equal(t, 50*time.Minute, FocusTime(task, now, DefaultSessionLength))
}

func TestSessionDuration_InProgress(t *testing.T) {
	task := Task{Status: StatusProgress, Sessions: []string{"2025-03-03T08:00:00Z"}}
	now := time.Date(2025, 3, 3, 8, 7, 0, 0, time.UTC)

	assert.Equal(t, 7*time.Minute, FocusTime(task, now, DefaultSessionLength))
	assert.Equal(t, 0, CompletedSessions(task, now, DefaultSessionLength))
	assert.Equal(t, 0*time.Second, SessionDuration(task, 3, now, DefaultSessionLength))
}
