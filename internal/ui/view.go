package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/bookchat/internal/bookchat"
	"github.com/longkey1/bookchat/internal/bookchat/conversation"
)

const (
	title      = "🤖 Robotics Book Assistant"
	emptyTitle = "Ask me anything about the Humanoid Robotics book!"
	timeLayout = "3:04:05 PM"
)

func (m Model) View() string {
	if !m.open {
		return toggleStyle.Render("💬 Book Assistant") + " " + dimStyle.Render("ctrl+o to open • ctrl+c to quit")
	}

	state := m.ctrl.State()
	var b strings.Builder

	b.WriteString(m.headerView(state))
	b.WriteString("\n")
	if state.Status == conversation.StatusErrored && state.LastError != "" {
		b.WriteString(bannerStyle.Render(state.LastError + "  ✕ esc"))
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if state.Status == conversation.StatusAwaitingResponse {
		b.WriteString(m.spinner.View() + thinkingStyle.Render(" Thinking..."))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter send • esc dismiss • ctrl+o hide • ctrl+c quit"))

	return panelStyle.Render(b.String())
}

func (m Model) headerView(state conversation.State) string {
	header := titleStyle.Render(title)
	if len(state.Transcript) > 0 || state.Status == conversation.StatusErrored {
		header += " " + dimStyle.Render("[ctrl+l Clear]")
	}
	return header
}

func (m Model) renderTranscript() string {
	state := m.ctrl.State()
	if len(state.Transcript) == 0 {
		if state.Status == conversation.StatusAwaitingResponse {
			return ""
		}
		return m.emptyView()
	}

	blocks := make([]string, 0, len(state.Transcript))
	for _, msg := range state.Transcript {
		blocks = append(blocks, m.messageView(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) emptyView() string {
	lines := []string{"💬", emptyTitle}
	if len(m.suggestions) > 0 {
		quoted := make([]string, len(m.suggestions))
		for i, s := range m.suggestions {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		lines = append(lines, dimStyle.Render("Try: "+strings.Join(quoted, " or ")))
	}
	return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Center, strings.Join(lines, "\n"))
}

func (m Model) messageView(msg bookchat.Message) string {
	stamp := dimStyle.Render(msg.Timestamp.Format(timeLayout))
	width := m.viewport.Width

	if msg.Role == bookchat.RoleUser {
		label := userLabelStyle.Render(msg.Role.Label()) + " " + stamp
		style := userContentStyle
		if lipgloss.Width(msg.Content) > width*4/5 {
			style = style.Width(width * 4 / 5)
		}
		body := style.Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Right,
			lipgloss.PlaceHorizontal(width, lipgloss.Right, label),
			lipgloss.PlaceHorizontal(width, lipgloss.Right, body),
		)
	}

	lines := []string{
		assistantLabelStyle.Render(msg.Role.Label()) + " " + stamp,
		m.render(msg.Content, width),
	}
	if len(msg.Sources) > 0 {
		lines = append(lines, dimStyle.Render("Sources:"))
		for i, src := range msg.Sources {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("[%d] %s (%.2f)", i+1, src.Label(), src.Score)))
		}
	}
	return strings.Join(lines, "\n")
}
