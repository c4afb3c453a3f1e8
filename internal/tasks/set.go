package tasks

import (
	"fmt"
	"sort"
	"strings"
)

// Set is an ordered collection of tasks.
type Set struct {
	tasks    []*Task
	byName   map[string]*Task
	defaults []string
	dups     []string
}

// NewSet creates a Set from tasks in declaration order. defaults are the
// tasks run when none are named.
func NewSet(defaults []string, tasks ...*Task) *Set {
	s := &Set{byName: make(map[string]*Task), defaults: defaults}
	for _, t := range tasks {
		s.Add(t)
	}
	return s
}

// Add appends t. Adding a second task with the same name keeps the first
// and makes Validate fail.
func (s *Set) Add(t *Task) {
	if _, ok := s.byName[t.Name]; ok {
		s.dups = append(s.dups, t.Name)
		return
	}
	s.tasks = append(s.tasks, t)
	s.byName[t.Name] = t
}

// Get returns the task called name, or nil.
func (s *Set) Get(name string) *Task {
	return s.byName[name]
}

// Lookup resolves "task" or "task:subtask". The returned subtask is nil when
// a whole task was named.
func (s *Set) Lookup(ref string) (*Task, *Task, error) {
	name, sub, hasSub := strings.Cut(ref, ":")
	t := s.byName[name]
	if t == nil {
		return nil, nil, fmt.Errorf("unknown task %q", name)
	}
	if !hasSub {
		return t, nil, nil
	}
	st := t.Subtask(sub)
	if st == nil {
		return nil, nil, fmt.Errorf("task %q has no subtask %q", name, sub)
	}
	return t, st, nil
}

// Names returns every task name in declaration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		names[i] = t.Name
	}
	return names
}

// Public returns the tasks that are not private, sorted by name.
func (s *Set) Public() []*Task {
	var out []*Task
	for _, t := range s.tasks {
		if !t.Private() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Default returns the names run when no task is given.
func (s *Set) Default() []string {
	return append([]string(nil), s.defaults...)
}

// Validate checks that names are unique and non-empty within each task,
// and that every task dependency and default task exists.
func (s *Set) Validate() error {
	if len(s.dups) > 0 {
		return fmt.Errorf("duplicate task %q", s.dups[0])
	}
	for _, t := range s.tasks {
		if t.Name == "" || strings.Contains(t.Name, ":") {
			return fmt.Errorf("invalid task name %q", t.Name)
		}
		if err := s.validateDeps(t.Name, t); err != nil {
			return err
		}
		seen := make(map[string]bool)
		for _, st := range t.Subtasks {
			if st.Name == "" {
				return fmt.Errorf("task %q has a subtask without a name", t.Name)
			}
			if seen[st.Name] {
				return fmt.Errorf("task %q has duplicate subtask %q", t.Name, st.Name)
			}
			seen[st.Name] = true
			if err := s.validateDeps(t.Name+":"+st.Name, st); err != nil {
				return err
			}
		}
	}
	for _, name := range s.defaults {
		if _, _, err := s.Lookup(name); err != nil {
			return fmt.Errorf("default task: %w", err)
		}
	}
	return nil
}

func (s *Set) validateDeps(owner string, t *Task) error {
	for _, dep := range t.TaskDeps {
		if _, _, err := s.Lookup(dep); err != nil {
			return fmt.Errorf("task %q depends on %w", owner, err)
		}
	}
	return nil
}
