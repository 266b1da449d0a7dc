package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/skillmatch"
	"github.com/poiesic/skillmatch/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tasksJSON = `[
  {"id": "A", "name": "Scraper", "required_skills": "python, marketing"},
  {"id": "B", "name": "Poster", "required_skills": ["design"]}
]`
	volunteerJSON  = `{"id": "v0", "skills": "python, design"}`
	volunteersJSON = `[
  {"id": "v1", "skills": "python"},
  {"id": "v2", "skills": "python, marketing"},
  {"id": "v3", "skills": "sales"}
]`
	eventJSON = `{
  "id": "e1",
  "name": "Hackathon",
  "tasks": [
    {"id": "t1", "name": "Backend", "required_skills": "python"},
    {"id": "t2", "name": "Data", "required_skills": "python"},
    {"id": "t3", "name": "Scripts", "required_skills": "python"},
    {"id": "t4", "name": "Flyers", "required_skills": "design"}
  ]
}`
	eventVolunteersJSON = `[
  {"id": "v1", "skills": "python, design"},
  {"id": "v2", "skills": "design"}
]`
)

type harness struct {
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	return &harness{dir: t.TempDir()}
}

func (h *harness) file(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func (h *harness) run(args ...string) error {
	app := newApp(&h.stdout, &h.stderr, skillmatch.WithProviderFactory(mock.NewMockProvider().Factory()))
	return app.Run(append([]string{"skillmatch"}, args...))
}

func (h *harness) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), v))
}

func TestRankTasksCommand(t *testing.T) {
	h := newHarness(t)
	err := h.run("--semantic=false", "rank-tasks",
		"--volunteer", h.file(t, "volunteer.json", volunteerJSON),
		"--tasks", h.file(t, "tasks.json", tasksJSON))
	require.NoError(t, err)

	var out rankingView
	h.decode(t, &out)
	assert.False(t, out.Personalized)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "B", out.Results[0].ID)
	assert.Equal(t, 100.0, out.Results[0].Score)
	assert.Equal(t, "A", out.Results[1].ID)
	assert.Equal(t, 50.0, out.Results[1].Score)
	assert.Equal(t, []string{"python"}, out.Results[1].MatchingSkills)
	assert.Equal(t, []string{"marketing"}, out.Results[1].MissingSkills)
}

func TestRankVolunteersCommand(t *testing.T) {
	h := newHarness(t)
	task := h.file(t, "task.json", `{"id": "A", "name": "Scraper", "required_skills": "python, marketing"}`)
	volunteers := h.file(t, "volunteers.json", volunteersJSON)

	t.Run("limit", func(t *testing.T) {
		h.stdout.Reset()
		err := h.run("--semantic=false", "rank-volunteers", "--task", task, "--volunteers", volunteers, "--limit", "1")
		require.NoError(t, err)

		var out rankingView
		h.decode(t, &out)
		require.Len(t, out.Results, 1)
		assert.Equal(t, "v2", out.Results[0].ID)
	})

	t.Run("yaml", func(t *testing.T) {
		h.stdout.Reset()
		err := h.run("--semantic=false", "--format", "yaml", "rank-volunteers", "--task", task, "--volunteers", volunteers)
		require.NoError(t, err)

		output := h.stdout.String()
		assert.Contains(t, output, "personalized: true")
		assert.Contains(t, output, "- id: v2")
		assert.NotContains(t, output, "{")
	})

	t.Run("volunteers required", func(t *testing.T) {
		err := h.run("rank-volunteers", "--task", task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "volunteers")
	})
}

func TestRecommendCommand(t *testing.T) {
	h := newHarness(t)
	err := h.run("--semantic=false", "recommend",
		"--task", h.file(t, "task.json", `{"id": "A", "required_skills": "python, marketing"}`),
		"--volunteers", h.file(t, "volunteers.json", volunteersJSON),
		"--required", "1")
	require.NoError(t, err)

	var out rankingView
	h.decode(t, &out)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "v2", out.Results[0].ID)
	assert.Equal(t, "v1", out.Results[1].ID)
}

func TestGapsCommand(t *testing.T) {
	h := newHarness(t)
	err := h.run("gaps",
		"--event", h.file(t, "event.json", eventJSON),
		"--volunteers", h.file(t, "volunteers.json", eventVolunteersJSON))
	require.NoError(t, err)

	var out struct {
		Coverage float64 `json:"coverage_percentage"`
		Gaps     []struct {
			Skill string `json:"skill"`
			Gap   int    `json:"gap"`
		} `json:"skill_gaps"`
		TotalTasks int `json:"total_tasks"`
	}
	h.decode(t, &out)
	assert.Equal(t, 50.0, out.Coverage)
	require.Len(t, out.Gaps, 1)
	assert.Equal(t, "python", out.Gaps[0].Skill)
	assert.Equal(t, 2, out.Gaps[0].Gap)
	assert.Equal(t, 4, out.TotalTasks)
}

func TestExtractCommand(t *testing.T) {
	h := newHarness(t)
	err := h.run("extract", "--top-k", "2", "Finance", "and", "marketing", "plan")
	require.NoError(t, err)

	var out extractView
	h.decode(t, &out)
	assert.Equal(t, "Finance and marketing plan", out.Text)
	assert.Equal(t, []string{"finance", "marketing"}, out.Skills)

	err = h.run("extract")
	assert.Error(t, err)
}

func TestWarmCommand(t *testing.T) {
	h := newHarness(t)
	err := h.run("warm",
		"--tasks", h.file(t, "tasks.json", tasksJSON),
		"--volunteers", h.file(t, "volunteers.json", `[{"id": "v0", "skills": "python, design"}]`),
		"--batch-size", "2")
	require.NoError(t, err)

	var out warmView
	h.decode(t, &out)
	assert.Equal(t, 9, out.Terms)
	assert.Equal(t, 3, out.Texts)
	assert.Equal(t, 3, out.Embedded)
	assert.Contains(t, h.stderr.String(), "Warming: 3/3")
}

func TestGlobalFlags(t *testing.T) {
	t.Run("invalid format", func(t *testing.T) {
		err := newHarness(t).run("--format", "xml", "extract", "python")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})

	t.Run("invalid log level", func(t *testing.T) {
		err := newHarness(t).run("--log-level", "loud", "extract", "python")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("config file", func(t *testing.T) {
		h := newHarness(t)
		config := h.file(t, "config.yaml", "skillmatch:\n  use_semantic: false\n  vocabulary: python, design\n")
		err := h.run("--config", config, "extract", "python", "and", "design", "and", "finance")
		require.NoError(t, err)

		var out extractView
		h.decode(t, &out)
		assert.Equal(t, []string{"python", "design"}, out.Skills)
	})
}
