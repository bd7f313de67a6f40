// Package picker is an interactive terminal chooser for catalog models.
package picker

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/pilot/pkg/models"
)

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	mutedGray  = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)

// modelItem wraps a catalog entry for the list.
type modelItem struct {
	model   models.ModelConfig
	current bool
}

func (i modelItem) FilterValue() string {
	return i.model.DisplayName + " " + i.model.Name + " " + i.model.Family
}

func (i modelItem) Title() string {
	title := i.model.DisplayName
	if i.current {
		title += " ●"
	}
	return title
}

func (i modelItem) Description() string {
	parts := []string{i.model.Name, i.model.Family}
	if i.model.SupportsReasoning {
		parts = append(parts, "reasoning")
	}
	if i.model.IsDefault {
		parts = append(parts, "default")
	}
	return strings.Join(parts, " • ")
}

func newDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(salmonPink).
		BorderForeground(salmonPink)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(mutedGray).
		BorderForeground(salmonPink)
	d.Styles.NormalTitle = d.Styles.NormalTitle.Foreground(mintGreen)
	return d
}

// Model is the bubbletea model of the picker.
type Model struct {
	list      list.Model
	chosen    *models.ModelConfig
	cancelled bool
	width     int
	height    int
}

// New creates a picker over every catalog model. The entry named current,
// if any, is marked and preselected.
func New(c *models.Catalog, current string) *Model {
	all := c.All()
	items := make([]list.Item, len(all))
	selected := 0
	for i, m := range all {
		isCurrent := m.Name == current
		if isCurrent {
			selected = i
		}
		items[i] = modelItem{model: m, current: isCurrent}
	}

	l := list.New(items, newDelegate(), 60, 20)
	l.Title = "Select Model"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	l.Select(selected)

	return &Model{list: l, width: 64, height: 24}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// While the filter input is focused, keys belong to the list.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(modelItem); ok {
				chosen := item.model
				m.chosen = &chosen
				return m, tea.Quit
			}
			return m, nil
		case "esc", "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.chosen != nil || m.cancelled {
		return ""
	}
	return boxStyle.Render(m.list.View())
}

// Selected returns the chosen model, if the user picked one.
func (m *Model) Selected() (models.ModelConfig, bool) {
	if m.chosen == nil {
		return models.ModelConfig{}, false
	}
	return *m.chosen, true
}

// Run shows the picker until the user chooses or cancels.
// ok is false when the user cancelled.
func Run(ctx context.Context, c *models.Catalog, current string, opts ...tea.ProgramOption) (models.ModelConfig, bool, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(New(c, current), opts...).Run()
	if err != nil {
		return models.ModelConfig{}, false, fmt.Errorf("model picker failed: %w", err)
	}
	chosen, ok := final.(*Model).Selected()
	return chosen, ok, nil
}
