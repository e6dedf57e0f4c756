package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/comfyrun/comfyrun/internal/client"
)

const pollEvery = 2 * time.Second

// Model is the Bubble Tea model for the watch dashboard.
type Model struct {
	api *client.Client

	Pods    PodsMsg
	Fetched bool

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
}

// NewModel creates a watch model backed by the given API client.
func NewModel(api *client.Client) Model {
	return Model{api: api}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tickCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case PodsMsg:
		m.Pods = msg
		m.Fetched = true
		return m, m.fetchLater()

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}

func (m Model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pods, err := m.api.ListPods(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		summary, err := m.api.CostSummary(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return PodsMsg{Pods: pods, Summary: summary}
	}
}

func (m Model) fetchLater() tea.Cmd {
	fetch := m.fetchCmd()
	return tea.Tick(pollEvery, func(time.Time) tea.Msg {
		return fetch()
	})
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Run starts the dashboard and blocks until the user quits.
func Run(api *client.Client) error {
	p := tea.NewProgram(NewModel(api))
	_, err := p.Run()
	return err
}
