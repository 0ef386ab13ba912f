package ui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/longkey1/bookchat/internal/bookchat"
	"github.com/longkey1/bookchat/internal/bookchat/conversation"
	"github.com/longkey1/bookchat/internal/bookchat/gateway"
	"github.com/longkey1/bookchat/internal/bookchat/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	mu    sync.Mutex
	calls []string
	reply *bookchat.Reply
	err   error
}

func (s *stubGateway) Send(ctx context.Context, question string) (*bookchat.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, question)
	return s.reply, s.err
}

func (s *stubGateway) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestModel(gw bookchat.Gateway) (Model, *widget.Controller) {
	ctrl := widget.New(gw)
	m := New(context.Background(), ctrl,
		WithOpen(true),
		WithSuggestions([]string{"What is Physical AI?"}),
	)
	return m, ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// outcomeFrom runs cmd (and any batched commands) and returns the gateway outcome.
func outcomeFrom(t *testing.T, cmd tea.Cmd) outcomeMsg {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case outcomeMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if out, ok := c().(outcomeMsg); ok {
				return out
			}
		}
	}
	t.Fatal("command did not produce an outcome")
	return outcomeMsg{}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	ctrlL = tea.KeyMsg{Type: tea.KeyCtrlL}
	ctrlO = tea.KeyMsg{Type: tea.KeyCtrlO}
)

func TestTypingUpdatesDraft(t *testing.T) {
	m, ctrl := newTestModel(&stubGateway{})

	typeText(t, m, "hello")

	assert.Equal(t, "hello", ctrl.State().Draft)
}

func TestSubmitSuccess(t *testing.T) {
	gw := &stubGateway{reply: &bookchat.Reply{Answer: "It is embodied AI."}}
	m, ctrl := newTestModel(gw)

	m = typeText(t, m, "What is Physical AI?")
	m, cmd := update(t, m, enter)

	assert.Equal(t, conversation.StatusAwaitingResponse, ctrl.Status())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Thinking...")

	m, _ = update(t, m, outcomeFrom(t, cmd))

	state := ctrl.State()
	require.Len(t, state.Transcript, 2)
	assert.Equal(t, conversation.StatusIdle, state.Status)
	assert.Equal(t, []string{"What is Physical AI?"}, gw.calls)
	view := m.View()
	assert.Contains(t, view, "It is embodied AI.")
	assert.NotContains(t, view, "Thinking...")
}

func TestSubmitServerError(t *testing.T) {
	gw := &stubGateway{err: &gateway.Error{Kind: gateway.KindServer, StatusCode: 500}}
	m, ctrl := newTestModel(gw)

	m = typeText(t, m, "X")
	m, cmd := update(t, m, enter)
	m, _ = update(t, m, outcomeFrom(t, cmd))

	state := ctrl.State()
	assert.Empty(t, state.Transcript)
	assert.Equal(t, conversation.StatusErrored, state.Status)
	assert.Contains(t, m.View(), "Failed to get response from server")

	m, _ = update(t, m, esc)

	assert.Equal(t, conversation.StatusIdle, ctrl.Status())
	assert.NotContains(t, m.View(), "Failed to get response from server")
}

func TestEnterWhileAwaitingIssuesNoCall(t *testing.T) {
	gw := &stubGateway{reply: &bookchat.Reply{Answer: "A answer"}}
	m, ctrl := newTestModel(gw)

	m = typeText(t, m, "A")
	m, first := update(t, m, enter)
	m = typeText(t, m, "B")
	m, second := update(t, m, enter)

	assert.Nil(t, second)
	state := ctrl.State()
	require.Len(t, state.Transcript, 1)
	assert.Equal(t, "A", state.Transcript[0].Content)
	assert.Equal(t, "B", state.Draft)

	outcomeFrom(t, first)
	assert.Equal(t, 1, gw.callCount())
}

func TestEnterWithBlankInputIsIgnored(t *testing.T) {
	gw := &stubGateway{}
	m, ctrl := newTestModel(gw)

	m = typeText(t, m, "   ")
	_, cmd := update(t, m, enter)

	assert.Nil(t, cmd)
	assert.Empty(t, ctrl.State().Transcript)
	assert.Equal(t, conversation.StatusIdle, ctrl.Status())
}

func TestAltEnterDoesNotSubmit(t *testing.T) {
	m, ctrl := newTestModel(&stubGateway{})

	m = typeText(t, m, "draft")
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true})

	assert.Nil(t, cmd)
	assert.Equal(t, conversation.StatusIdle, ctrl.Status())
}

func TestClearDiscardsLateOutcome(t *testing.T) {
	gw := &stubGateway{reply: &bookchat.Reply{Answer: "late answer"}}
	m, ctrl := newTestModel(gw)

	m = typeText(t, m, "question")
	m, cmd := update(t, m, enter)
	m, _ = update(t, m, ctrlL)

	assert.Empty(t, ctrl.State().Transcript)
	assert.Equal(t, conversation.StatusIdle, ctrl.Status())

	m, _ = update(t, m, outcomeFrom(t, cmd))

	assert.Empty(t, ctrl.State().Transcript)
	assert.NotContains(t, m.View(), "late answer")
	assert.Contains(t, m.View(), emptyTitle)
}

func TestClearResetsFailedFirstQuestion(t *testing.T) {
	gw := &stubGateway{err: &gateway.Error{Kind: gateway.KindServer, StatusCode: 500}}
	m, ctrl := newTestModel(gw)

	m, _ = update(t, m, ctrlL)
	assert.NotContains(t, m.View(), "[ctrl+l Clear]")

	m = typeText(t, m, "X")
	m, cmd := update(t, m, enter)
	m, _ = update(t, m, outcomeFrom(t, cmd))

	require.Empty(t, ctrl.State().Transcript)
	require.Equal(t, conversation.StatusErrored, ctrl.Status())
	assert.Contains(t, m.View(), "[ctrl+l Clear]")

	generation := ctrl.State().Generation
	m, _ = update(t, m, ctrlL)

	state := ctrl.State()
	assert.Equal(t, conversation.StatusIdle, state.Status)
	assert.Empty(t, state.LastError)
	assert.Equal(t, generation+1, state.Generation)
	assert.NotContains(t, m.View(), "Failed to get response from server")
}

func TestToggle(t *testing.T) {
	m, _ := newTestModel(&stubGateway{})
	assert.Contains(t, m.View(), title)

	m, _ = update(t, m, ctrlO)
	assert.NotContains(t, m.View(), title)
	assert.Contains(t, m.View(), "ctrl+o to open")

	m, _ = update(t, m, ctrlO)
	assert.Contains(t, m.View(), title)
}

func TestClosedPanelIgnoresInput(t *testing.T) {
	gw := &stubGateway{}
	m, ctrl := newTestModel(gw)
	m, _ = update(t, m, ctrlO)

	m = typeText(t, m, "hidden")
	_, cmd := update(t, m, enter)

	assert.Nil(t, cmd)
	assert.Empty(t, ctrl.State().Draft)
	assert.Equal(t, 0, gw.callCount())
}

func TestEmptyStateShowsSuggestions(t *testing.T) {
	m, _ := newTestModel(&stubGateway{})

	view := m.View()

	assert.Contains(t, view, emptyTitle)
	assert.Contains(t, view, `"What is Physical AI?"`)
	assert.NotContains(t, view, "Clear")
}

func TestSourcesAreListed(t *testing.T) {
	gw := &stubGateway{reply: &bookchat.Reply{
		Answer:  "Walking uses ZMP.",
		Sources: []bookchat.Source{{ChapterTitle: "Locomotion", SectionTitle: "Gait", Score: 0.87}},
	}}
	m, _ := newTestModel(gw)

	m = typeText(t, m, "Explain bipedal walking")
	m, cmd := update(t, m, enter)
	m, _ = update(t, m, outcomeFrom(t, cmd))

	view := m.View()
	assert.Contains(t, view, "[1] Locomotion > Gait (0.87)")
	assert.Contains(t, view, "Clear")
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newTestModel(&stubGateway{})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
