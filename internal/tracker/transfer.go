package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Export serializes the whole store as indented JSON.
func Export(s Store) ([]byte, error) {
	if s == nil {
		s = Store{}
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return b, nil
}

// ExportYAML serializes the store as YAML for reading by humans.
func ExportYAML(s Store) ([]byte, error) {
	if s == nil {
		s = Store{}
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("export yaml: %w", err)
	}
	return b, nil
}

// ImportedTask is a decoded task together with the JSON fields that were
// actually present in the payload.
type ImportedTask struct {
	Task   Task
	Fields map[string]bool
}

// Import is a validated payload ready to be merged.
type Import map[string][]ImportedTask

// Days returns the imported day keys in order.
func (imp Import) Days() []string {
	days := make([]string, 0, len(imp))
	for d := range imp {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// ParseImport validates an exported dump. The payload must be an object of
// day keys to arrays, and every task needs a non-empty id and created_at.
// Nothing is returned unless the whole payload is valid.
func ParseImport(data []byte) (Import, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidImport)
	}
	imp := make(Import, len(top))
	for day, raw := range top {
		if _, err := ParseDay(day); err != nil {
			return nil, fmt.Errorf("%w: key %q is not a day", ErrInvalidImport, day)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			return nil, fmt.Errorf("%w: value of %q is not an array", ErrInvalidImport, day)
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("%w: value of %q is not an array", ErrInvalidImport, day)
		}
		tasks := make([]ImportedTask, 0, len(elems))
		for i, el := range elems {
			it, err := parseImportedTask(el)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrInvalidImport, day, i, err)
			}
			tasks = append(tasks, it)
		}
		imp[day] = tasks
	}
	return imp, nil
}

func parseImportedTask(el json.RawMessage) (ImportedTask, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(el, &fields); err != nil || fields == nil {
		return ImportedTask{}, fmt.Errorf("task is not an object")
	}
	for _, key := range []string{"id", "created_at"} {
		var v string
		if err := json.Unmarshal(fields[key], &v); err != nil || v == "" {
			return ImportedTask{}, fmt.Errorf("missing %s", key)
		}
	}
	var t Task
	if err := json.Unmarshal(el, &t); err != nil {
		return ImportedTask{}, err
	}
	if err := checkTarget(t.TargetSessions); err != nil {
		return ImportedTask{}, err
	}
	if _, ok := fields["status"]; ok && !t.Status.Valid() {
		return ImportedTask{}, fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	for _, stamp := range t.Sessions {
		if _, err := ParseStamp(stamp); err != nil {
			return ImportedTask{}, err
		}
	}
	present := make(map[string]bool, len(fields))
	for k := range fields {
		present[k] = true
	}
	return ImportedTask{Task: t, Fields: present}, nil
}

// Merge folds imp into a copy of existing. Tasks are matched by id within a
// day: unknown ids are appended, known ids take every field present in the
// import, except sub_tasks which are unioned by id keeping existing entries.
func Merge(existing Store, imp Import) Store {
	out := existing.Clone()
	for _, day := range imp.Days() {
		cur := out[day]
		if cur == nil {
			cur = []Task{}
		}
		for _, it := range imp[day] {
			idx := -1
			for i := range cur {
				if cur[i].ID == it.Task.ID {
					idx = i
					break
				}
			}
			if idx < 0 {
				cur = append(cur, it.Task.clone())
				continue
			}
			cur[idx] = mergeTask(cur[idx], it)
		}
		out[day] = cur
	}
	return out
}

func mergeTask(cur Task, it ImportedTask) Task {
	in := it.Task.clone()
	f := it.Fields
	if f["title"] {
		cur.Title = in.Title
	}
	if f["status"] {
		cur.Status = in.Status
	}
	if f["sessions"] {
		cur.Sessions = in.Sessions
	}
	if f["target_sessions"] {
		cur.TargetSessions = in.TargetSessions
	}
	if f["completed_at"] {
		cur.CompletedAt = in.CompletedAt
	}
	if f["category"] {
		cur.Category = in.Category
	}
	if f["created_at"] {
		cur.CreatedAt = in.CreatedAt
	}
	if f["sub_tasks"] {
		have := make(map[string]bool, len(cur.SubTasks))
		for _, st := range cur.SubTasks {
			have[st.ID] = true
		}
		for _, st := range in.SubTasks {
			if !have[st.ID] {
				cur.SubTasks = append(cur.SubTasks, st)
				have[st.ID] = true
			}
		}
	}
	return cur
}
