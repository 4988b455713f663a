package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ramanasai/amal/internal/tracker"
)

// resolveTask finds a task by 1-based position, full id or unique id suffix.
func resolveTask(tasks []tracker.Task, ref string) (int, tracker.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, tracker.Task{}, fmt.Errorf("empty task reference")
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tasks) {
		return n - 1, tasks[n-1], nil
	}
	i, err := resolveID(len(tasks), ref, func(i int) string { return tasks[i].ID })
	if err != nil {
		return -1, tracker.Task{}, fmt.Errorf("task %w", err)
	}
	return i, tasks[i], nil
}

// resolveSubTask does the same for a task's checklist.
func resolveSubTask(t tracker.Task, ref string) (int, tracker.SubTask, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(t.SubTasks) {
		return n - 1, t.SubTasks[n-1], nil
	}
	i, err := resolveID(len(t.SubTasks), ref, func(i int) string { return t.SubTasks[i].ID })
	if err != nil {
		return -1, tracker.SubTask{}, fmt.Errorf("subtask %w", err)
	}
	return i, t.SubTasks[i], nil
}

func resolveID(n int, ref string, id func(int) string) (int, error) {
	match := -1
	for i := 0; i < n; i++ {
		switch {
		case id(i) == ref:
			return i, nil
		case strings.HasSuffix(id(i), ref):
			if match >= 0 {
				return -1, fmt.Errorf("%q is ambiguous", ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%q not found", ref)
	}
	return match, nil
}
