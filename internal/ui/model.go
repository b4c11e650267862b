// Package ui renders a chat widget in the terminal.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/i18n"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/model/chat"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/widget"
)

// chromeHeight 为标题、输入框与帮助行预留的行数
const chromeHeight = 6

// changedMsg 组件状态或消息列表发生变化
type changedMsg struct{}

// submittedMsg 一次提交结束
type submittedMsg struct {
	text     string
	accepted bool
}

// Model hosts a mounted widget inside a bubbletea program.
type Model struct {
	ctx     context.Context
	widget  *widget.Widget
	catalog i18n.Catalog

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// rendered caches glamour output by message ID; messages never change.
	rendered map[string]string
	width    int
	quitting bool
}

// New builds the view for w. The caller mounts w; ctrl+c unmounts it.
func New(ctx context.Context, w *widget.Widget) Model {
	catalog := w.Catalog()

	input := textinput.New()
	input.Placeholder = catalog.Placeholder
	input.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)

	vp := viewport.New(80, 12)

	return Model{
		ctx:      ctx,
		widget:   w,
		catalog:  catalog,
		input:    input,
		viewport: vp,
		spinner:  sp,
		rendered: make(map[string]string),
		width:    80,
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForChange(m.widget.Changes()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch ev := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = ev.Width
		m.viewport.Width = ev.Width
		m.viewport.Height = max(ev.Height-chromeHeight, 3)
		m.input.Width = max(ev.Width-4, 10)
		m.rendered = make(map[string]string)
		m.refresh()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.widget.Changes())

	case submittedMsg:
		if !ev.accepted {
			return m, nil
		}
		// 只清空已被接受的文本，等待期间继续输入的内容保留
		if m.input.Value() == ev.text {
			m.input.Reset()
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(ev)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(ev)
	}

	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		m.quitting = true
		m.widget.Unmount()
		return m, tea.Quit
	case "ctrl+o":
		m.widget.Open()
		m.refresh()
		return m, m.input.Focus()
	case "esc":
		m.widget.Close()
		m.input.Blur()
		return m, nil
	}

	if !m.widget.State().Open {
		return m, nil
	}

	switch key.String() {
	case "enter":
		return m, m.submit()
	case "ctrl+s":
		if last, ok := m.widget.LastAssistant(); ok {
			m.widget.PlayAudio(last.Text)
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	m.widget.SetInput(m.input.Value())
	return m, cmd
}

// submit hands the pending input to the widget. The blocking request runs in
// a tea.Cmd so the view keeps animating.
func (m *Model) submit() tea.Cmd {
	text := m.input.Value()
	if m.widget.State().InFlight || strings.TrimSpace(text) == "" {
		return nil
	}
	w, ctx := m.widget, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return submittedMsg{text: text, accepted: w.Submit(ctx, text)}
	})
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderMessages(m.widget.Messages()))
	m.viewport.GotoBottom()
}

func (m *Model) renderMessages(messages []chat.Message) string {
	if len(messages) == 0 {
		return helpStyle.Render(m.catalog.Empty)
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		label := userLabelStyle.Render(m.catalog.You)
		if msg.IsAI {
			label = aiLabelStyle.Render(m.catalog.Assistant)
		}
		b.WriteString(label + " " + timeStyle.Render(msg.Timestamp()) + "\n")
		b.WriteString(m.renderText(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderText(msg chat.Message) string {
	if !msg.IsAI {
		return userTextStyle.Render(msg.Text)
	}
	if cached, ok := m.rendered[msg.ID]; ok {
		return cached
	}

	out := msg.Text
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(m.width-4, 20)),
	)
	if err == nil {
		if styled, err := renderer.Render(msg.Text); err == nil {
			out = strings.TrimRight(styled, "\n")
		}
	}
	m.rendered[msg.ID] = out
	return out
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	state := m.widget.State()
	if !state.Open {
		return m.collapsedView(state)
	}

	header := headerStyle.Render(m.catalog.Title) + "  " + helpStyle.Render(m.catalog.HelpClose)
	status := helpStyle.Render(m.catalog.HelpSpeak)
	if state.InFlight {
		status = m.spinner.View() + " " + m.catalog.Thinking
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		status,
		m.input.View(),
	)
}

func (m Model) collapsedView(state widget.State) string {
	launcher := launcherStyle.Render(m.catalog.Launcher)
	if state.Notification {
		launcher = lipgloss.JoinHorizontal(lipgloss.Center, launcher, " ", badgeStyle.Render(m.catalog.NewMessage))
	}
	return lipgloss.JoinVertical(lipgloss.Left, launcher, helpStyle.Render(m.catalog.HelpOpen))
}
