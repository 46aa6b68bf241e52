package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D2E2E")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06C75"))

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD4B4B")).
			Padding(1, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))
)

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

// baseCommands seeds autocomplete with the structured command surface.
var baseCommands = []string{
	"start_game first_player: ",
	"update_phase phase: ",
	"next turn", "previous turn", "next phase",
	"gain cp player: ", "spend cp player: ", "correct_cp player: ",
	"draw_secondary player: ", "score_secondary player: ", "discard_secondary player: ",
	"score_primary player: ", "correct_vp player: ",
	"set_mission mission: ", "set_mission_mode player: ",
	"add_unit player: ", "damage_unit player: ", "destroy_unit player: ",
	"update_objective_control marker_id: ",
	"add_note text: ", "query_state",
	"exit", "quit",
}

type replModel struct {
	app        *session.Session
	structured bool
	textInput  textinput.Model
	viewport   viewport.Model
	sugs       list.Model
	history    []string
	historyIdx int
	logContent string
	width      int
	height     int
	gameName   string
	showList   bool
}

func newREPLModel(app *session.Session, gameName string, structured bool) replModel {
	ti := textinput.New()
	ti.Placeholder = "Say what happened (or use a structured command)..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	vp := viewport.New(0, 0)
	welcome := "Tracking " + gameName + ". Type 'exit' to quit."
	vp.SetContent(welcome)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7)
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false)
	sugList.SetShowHelp(false)

	return replModel{
		app:        app,
		structured: structured,
		textInput:  ti,
		viewport:   vp,
		sugs:       sugList,
		history:    []string{},
		historyIdx: -1,
		logContent: welcome,
		gameName:   gameName,
	}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) updateSuggestions() {
	val := m.textInput.Value()
	var items []list.Item

	defer func() {
		m.sugs.SetItems(items)
		m.showList = len(items) > 0
		if m.showList {
			h := len(items)
			if h > 10 {
				h = 10
			}
			if h < 4 {
				h = 4
			}
			m.sugs.SetHeight(h)
			m.sugs.ResetSelected()
		}
	}()

	if val == "" {
		return
	}

	for _, c := range baseCommands {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(val)) && len(val) < len(c) {
			items = append(items, suggestion(c))
		}
	}

	// Secondary name completion after "name: ".
	if strings.Contains(strings.ToLower(val), " name: ") {
		parts := strings.SplitN(strings.ToLower(val), " name: ", 2)
		if len(parts) == 2 {
			prefix := parts[1]
			baseStr := val[:len(val)-len(prefix)]
			for _, sec := range m.app.Library().AllSecondaries() {
				if strings.HasPrefix(strings.ToLower(sec.Name), prefix) {
					items = append(items, suggestion(baseStr+sec.Name))
				}
			}
		}
	}

	// Unit id completion after "unit_id: " or "target_id: ".
	for _, key := range []string{" unit_id: ", " target_id: "} {
		if !strings.Contains(strings.ToLower(val), key) {
			continue
		}
		parts := strings.SplitN(strings.ToLower(val), key, 2)
		if len(parts) != 2 {
			continue
		}
		prefix := parts[1]
		baseStr := val[:len(val)-len(prefix)]
		state := m.app.State()
		for _, p := range []game.Player{game.Attacker, game.Defender} {
			for id := range state.State(p).Units {
				if strings.HasPrefix(strings.ToLower(id), prefix) {
					items = append(items, suggestion(baseStr+id))
				}
			}
		}
	}
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.sugs, lsCmd = m.sugs.Update(msg)
			} else {
				if len(m.history) > 0 {
					if m.historyIdx == -1 {
						m.historyIdx = len(m.history) - 1
					} else if m.historyIdx > 0 {
						m.historyIdx--
					}
					m.textInput.SetValue(m.history[m.historyIdx])
					m.updateSuggestions()
				}
			}

		case tea.KeyDown:
			if m.showList {
				m.sugs, lsCmd = m.sugs.Update(msg)
			} else {
				if len(m.history) > 0 && m.historyIdx != -1 {
					if m.historyIdx < len(m.history)-1 {
						m.historyIdx++
						m.textInput.SetValue(m.history[m.historyIdx])
					} else {
						m.historyIdx = -1
						m.textInput.SetValue("")
					}
					m.updateSuggestions()
				}
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.sugs.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "exit" || val == "quit" {
				return m, tea.Quit
			}

			if val != "" {
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")
				m.updateSuggestions()

				m.logContent += fmt.Sprintf("\n\n> %s\n", val)
				m.logContent += m.run(val)

				m.viewport.SetContent(m.logContent)
				m.viewport.GotoBottom()
			}
		default:
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 30
		if m.viewport.Height < 5 {
			m.viewport.Height = 5
		}
		m.sugs.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	stateH := lipgloss.Height(m.renderState())
	inputH := 1

	listAreaHeight := 0
	if m.showList {
		listAreaHeight = m.sugs.Height() + 2
	}

	infoH := lipgloss.Height(infoStyle.Render("Dummy"))
	paddingH := 7

	overhead := titleH + stateH + inputH + listAreaHeight + infoH + paddingH + 4

	m.viewport.Height = m.height - overhead
	if m.viewport.Height < 4 {
		m.viewport.Height = 4
	}

	return m, tea.Batch(tiCmd, vpCmd, lsCmd)
}

// run routes one line of input: structured commands dispatch directly, free
// text goes through the utterance pipeline unless --no-llm is set.
func (m *replModel) run(val string) string {
	isCommand := strings.Contains(val, ":") || isBareTool(val)

	var reply *session.Reply
	if m.structured || isCommand {
		reply = m.app.Execute(session.ParseCommand(val))
	} else {
		var err error
		reply, err = m.app.HandleUtterance(context.Background(), val)
		if err != nil {
			return rejectStyle.Render(fmt.Sprintf("Error: %v", err))
		}
	}
	return renderReply(reply)
}

// isBareTool reports whether the input is a zero-argument structured command
// like "next turn" or "query_state".
func isBareTool(val string) bool {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(val), " ", "_"))
	switch name {
	case "next_turn", "previous_turn", "next_phase", "query_state", "end_game":
		return true
	}
	return false
}

func renderReply(reply *session.Reply) string {
	if reply == nil {
		return ""
	}
	var b strings.Builder
	if reply.Ignored {
		b.WriteString(infoStyle.Render("(not game-related, ignored)"))
		b.WriteString("\n")
	}
	for _, msg := range reply.Messages {
		b.WriteString(msg)
		b.WriteString("\n")
	}
	for _, w := range reply.Warnings {
		b.WriteString(warnStyle.Render("! " + w))
		b.WriteString("\n")
	}
	for _, r := range reply.Rejections {
		b.WriteString(rejectStyle.Render("x " + r))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *replModel) renderState() string {
	state := m.app.State()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Round %d | %s phase | %s turn\n\n", state.Round, state.Phase, state.PlayerTurn)

	for _, p := range []game.Player{game.Attacker, game.Defender} {
		ps := state.State(p)
		marker := "  "
		if state.PlayerTurn == p {
			marker = "> "
		}
		fmt.Fprintf(&sb, "%s%-8s  %2dCP  %3dVP  (%s)\n", marker, p, ps.CP, ps.VP, ps.MissionMode)
		for _, name := range ps.ActiveSecondaries {
			scored := 0
			if prog, ok := ps.Secondaries[name]; ok {
				scored = prog.VPScored
			}
			fmt.Fprintf(&sb, "    - %s (%dVP)\n", name, scored)
		}
	}

	if len(state.Objectives) > 0 {
		sb.WriteString("\nObjectives: ")
		var parts []string
		for _, om := range state.Objectives {
			holder := "contested"
			if om.ControlledBy != "" {
				holder = string(om.ControlledBy)
			}
			parts = append(parts, fmt.Sprintf("%s=%s", om.ID, holder))
		}
		sb.WriteString(strings.Join(parts, ", "))
	}

	return stateBoxStyle.Width(m.width - 4).Render(sb.String())
}

func (m *replModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	mission := m.app.State().Mission
	if mission == "" {
		mission = "no mission set"
	}
	title := titleStyle.Render(fmt.Sprintf(" warscribe | %s | %s ", m.gameName, mission))
	stateBox := m.renderState()
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	var inputArea string
	if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", m.textInput.View(), autocompleteStyle.Render(m.sugs.View()))
	} else {
		inputArea = m.textInput.View()
	}

	mainView := lipgloss.JoinVertical(lipgloss.Left,
		title,
		stateBox,
		logBox,
		"\n",
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)

	return mainView + strings.Repeat("\n", 7)
}

// RunTUI starts the interactive shell for one tracked game.
func RunTUI(app *session.Session, gameName string, structured bool) error {
	m := newREPLModel(app, gameName, structured)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
