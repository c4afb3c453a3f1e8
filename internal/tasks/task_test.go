package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtaskName(t *testing.T) {
	tests := []struct {
		wrapper string
		command string
		want    string
	}{
		{wrapper: "poetry run", command: "foo bar", want: "foo"},
		{wrapper: "poetry run", command: "poetry run foo bar", want: "foo"},
		{wrapper: "poetry run", command: "poetry install", want: "poetry"},
		{wrapper: "poetry run", command: "poetry run", want: "poetry"},
		{wrapper: "poetry run", command: "  flake8   --max-line-length 79", want: "flake8"},
		{wrapper: "", command: "poetry run foo", want: "poetry"},
		{wrapper: "pipenv run", command: "pipenv run isort --diff", want: "isort"},
		{wrapper: "poetry run", command: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SubtaskName(tt.wrapper, tt.command), "%q with wrapper %q", tt.command, tt.wrapper)
	}
}

func TestSubtask_Defaults(t *testing.T) {
	task := Subtask("poetry run", "foo bar", nil)
	assert.Equal(t, "foo", task.Name)
	assert.Equal(t, []Action{Cmd("foo bar")}, task.Actions)
	assert.Nil(t, task.FileDeps)
	assert.Equal(t, []string{"install"}, task.TaskDeps)
}

func TestSubtask_WithFileDep(t *testing.T) {
	task := Subtask("poetry run", "foo bar", []string{"taz"})
	assert.Equal(t, "foo", task.Name)
	assert.Equal(t, []string{"taz"}, task.FileDeps)
}

func TestSubtask_WithWrapper(t *testing.T) {
	task := Subtask("poetry run", "poetry run foo bar", nil)
	assert.Equal(t, "foo", task.Name)
	assert.Equal(t, "poetry run foo bar", task.Actions[0].String())
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "flake8", Cmd("flake8").String())
	assert.Equal(t, "(merge)", Func("merge", nil).String())
}

func TestSet(t *testing.T) {
	set := NewSet([]string{"style"},
		&Task{Name: "_hidden"},
		&Task{Name: "style", TaskDeps: []string{"_hidden"}, Subtasks: []*Task{{Name: "flake8"}, {Name: "pydocstyle"}}},
		&Task{Name: "check"},
	)
	require.NoError(t, set.Validate())

	assert.Equal(t, []string{"_hidden", "style", "check"}, set.Names())
	public := set.Public()
	require.Len(t, public, 2)
	assert.Equal(t, "check", public[0].Name)
	assert.Equal(t, "style", public[1].Name)
	assert.Equal(t, []string{"style"}, set.Default())

	task, sub, err := set.Lookup("style:flake8")
	require.NoError(t, err)
	assert.Equal(t, "style", task.Name)
	assert.Equal(t, "flake8", sub.Name)

	_, sub, err = set.Lookup("style")
	require.NoError(t, err)
	assert.Nil(t, sub)

	_, _, err = set.Lookup("style:black")
	assert.EqualError(t, err, `task "style" has no subtask "black"`)
	_, _, err = set.Lookup("lint")
	assert.EqualError(t, err, `unknown task "lint"`)
}

func TestSetValidate(t *testing.T) {
	tests := []struct {
		name string
		set  *Set
		want string
	}{
		{
			name: "duplicate task",
			set:  NewSet(nil, &Task{Name: "a"}, &Task{Name: "a"}),
			want: `duplicate task "a"`,
		},
		{
			name: "unknown dependency",
			set:  NewSet(nil, &Task{Name: "a", TaskDeps: []string{"b"}}),
			want: `task "a" depends on unknown task "b"`,
		},
		{
			name: "duplicate subtask",
			set:  NewSet(nil, &Task{Name: "a", Subtasks: []*Task{{Name: "x"}, {Name: "x"}}}),
			want: `task "a" has duplicate subtask "x"`,
		},
		{
			name: "subtask dependency",
			set:  NewSet(nil, &Task{Name: "a", Subtasks: []*Task{{Name: "x", TaskDeps: []string{"install"}}}}),
			want: `task "a:x" depends on unknown task "install"`,
		},
		{
			name: "unknown default",
			set:  NewSet([]string{"b"}, &Task{Name: "a"}),
			want: `default task: unknown task "b"`,
		},
		{
			name: "colon in name",
			set:  NewSet(nil, &Task{Name: "a:b"}),
			want: `invalid task name "a:b"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.set.Validate(), tt.want)
		})
	}
}
