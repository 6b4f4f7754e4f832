package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/config"
	"github.com/san-kum/navcore/internal/integrators"
	"github.com/san-kum/navcore/internal/scenario"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// setting is one editable field of the config screen.
type setting struct {
	name  string
	value func(*scenario.Scenario) string
	cycle func(*scenario.Scenario, int)
}

var settings = []setting{
	{
		name:  "preset",
		value: func(sc *scenario.Scenario) string { return orDefault(sc.Preset, "(none)") },
		cycle: func(sc *scenario.Scenario, dir int) { sc.Preset = cycleString(config.ListPresets(), sc.Preset, dir) },
	},
	{
		name:  "integrator",
		value: func(sc *scenario.Scenario) string { return orDefault(sc.Integrator, "(config)") },
		cycle: func(sc *scenario.Scenario, dir int) {
			sc.Integrator = cycleString(integrators.Names(), sc.Integrator, dir)
		},
	},
	{
		name: "dt",
		value: func(sc *scenario.Scenario) string {
			if sc.Dt == 0 {
				return "(config)"
			}
			return fmt.Sprintf("%.3f", sc.Dt)
		},
		cycle: func(sc *scenario.Scenario, dir int) {
			if sc.Dt == 0 {
				sc.Dt = config.DefaultDt
			}
			if dir > 0 {
				sc.Dt = min(sc.Dt*2, 0.4)
			} else {
				sc.Dt = max(sc.Dt/2, 0.0125)
			}
		},
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// cycleString steps through options from cur; the empty string sits before
// the first option.
func cycleString(options []string, cur string, dir int) string {
	all := append([]string{""}, options...)
	idx := 0
	for i, o := range all {
		if o == cur {
			idx = i
		}
	}
	return all[((idx+dir)%len(all)+len(all))%len(all)]
}

type model struct {
	state     int
	cursor    int
	setCursor int
	scenarios []*scenario.Scenario
	selected  *scenario.Scenario
	base      *config.Config
	log       zerolog.Logger
	theme     Theme
	err       error
	live      *LiveModel
}

func NewInteractiveApp(scenarios []*scenario.Scenario, base *config.Config, log zerolog.Logger, theme Theme) *model {
	return &model{scenarios: scenarios, base: base, log: log, theme: theme}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.state, m.live = stateConfig, nil
			return m, nil
		}
		_, cmd := m.live.Update(msg)
		return m, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.state == stateMenu {
			return m, m.menuKey(key)
		}
		return m, m.configKey(key)
	}
	return m, nil
}

func (m *model) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenarios)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.scenarios) > 0 {
			sc := *m.scenarios[m.cursor]
			m.selected = &sc
			m.state, m.setCursor, m.err = stateConfig, 0, nil
		}
	}
	return nil
}

func (m *model) configKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.setCursor > 0 {
			m.setCursor--
		}
	case "down", "j":
		if m.setCursor < len(settings)-1 {
			m.setCursor++
		}
	case "left", "h":
		settings[m.setCursor].cycle(m.selected, -1)
	case "right", "l":
		settings[m.setCursor].cycle(m.selected, 1)
	case "s", "enter":
		return m.start()
	}
	return nil
}

func (m *model) start() tea.Cmd {
	setup, err := scenario.Build(m.selected, m.base, m.log)
	if err != nil {
		m.err = err
		return nil
	}
	m.live = NewLive(setup, scenario.Options{Log: m.log}, m.theme)
	m.state = stateSim
	return m.live.Init()
}

func (m *model) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return m.viewMenu()
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + dimStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m *model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + GetTheme("cyberpunk").styles().header.Render("NAVSIM") + "\n")
	b.WriteString("    " + dimStyle.Render("vehicle motion control scenarios") + "\n\n")
	if len(m.scenarios) == 0 {
		b.WriteString("    " + dimStyle.Render("no scenarios found") + "\n")
	}
	for i, sc := range m.scenarios {
		desc := sc.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", cursorStyle.Render("▸"), nameStyle.Render(fmt.Sprintf("%-16s", sc.Name)), descStyle.Render(desc))
		} else {
			fmt.Fprintf(&b, "      %s  %s\n", dimStyle.Render(fmt.Sprintf("%-16s", sc.Name)), dimStyle.Render(desc))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m *model) viewConfig() string {
	sc := m.selected
	var b strings.Builder
	b.WriteString("\n\n    " + nameStyle.Render(strings.ToUpper(sc.Name)) + "\n")
	b.WriteString("    " + dimStyle.Render(sc.Mission.Kind+" mission") + "\n\n")
	for i, s := range settings {
		if i == m.setCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", cursorStyle.Render("▸"), nameStyle.Render(fmt.Sprintf("%-12s", s.name)), descStyle.Render(s.value(sc)))
		} else {
			fmt.Fprintf(&b, "      %s %s\n", dimStyle.Render(fmt.Sprintf("%-12s", s.name)), dimStyle.Render(s.value(sc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "change", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive lets the user pick a scenario, tune it and watch it run.
func RunInteractive(scenarios []*scenario.Scenario, base *config.Config, log zerolog.Logger, theme Theme) error {
	_, err := tea.NewProgram(NewInteractiveApp(scenarios, base, log, theme), tea.WithAltScreen()).Run()
	return err
}
