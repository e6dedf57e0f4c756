package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comfyrun/comfyrun/internal/cost"
	"github.com/comfyrun/comfyrun/internal/pod"
)

func podsMsg() PodsMsg {
	return PodsMsg{
		Pods: []pod.View{
			{PodID: "p1", Name: "workbench", GPUID: "NVIDIA GeForce RTX 4090", Status: "running", SetupProgress: 100, CostSoFar: 1.23, Uptime: "01:02:03"},
			{PodID: "p2", Name: "experiment", GPUID: "NVIDIA A40", Status: "initializing", SetupProgress: 42.5, Uptime: "00:00:30"},
		},
		Summary: &cost.Summary{TotalCost: 1.23, TotalPods: 2},
	}
}

func TestViewBeforeFirstFetch(t *testing.T) {
	m := NewModel(nil)
	out := m.View()
	assert.Contains(t, out, "connecting")
}

func TestViewRendersPods(t *testing.T) {
	m := NewModel(nil)
	next, _ := m.Update(podsMsg())
	out := next.View()

	assert.Contains(t, out, "workbench")
	assert.Contains(t, out, "experiment")
	assert.Contains(t, out, "RTX 4090")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "42.5%")
	assert.Contains(t, out, "$1.23")
	assert.Contains(t, out, "Total cost")
}

func TestViewEmptyState(t *testing.T) {
	m := NewModel(nil)
	next, _ := m.Update(PodsMsg{})
	out := next.View()
	assert.Contains(t, out, "No pods")
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestErrQuits(t *testing.T) {
	m := NewModel(nil)
	next, cmd := m.Update(ErrMsg{Err: errors.New("daemon unreachable")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Contains(t, next.View(), "daemon unreachable")
}

func TestProgressBar(t *testing.T) {
	out := renderProgressBar(50, 10)
	assert.Contains(t, out, "50.0%")
	assert.Equal(t, 5, strings.Count(out, "#"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "toolong...", truncate("toolongvalue", 10))
}

func TestShortGPU(t *testing.T) {
	assert.Equal(t, "RTX 4090", shortGPU("NVIDIA GeForce RTX 4090"))
	assert.Equal(t, "A40", shortGPU("NVIDIA A40"))
	assert.Equal(t, "Unknown", shortGPU("Unknown"))
}
