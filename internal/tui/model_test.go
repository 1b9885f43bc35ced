package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/taskdesk/internal/autosave"
	"github.com/javiermolinar/taskdesk/internal/board"
	"github.com/javiermolinar/taskdesk/internal/config"
	"github.com/javiermolinar/taskdesk/internal/form"
	"github.com/javiermolinar/taskdesk/internal/httpx"
	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/store"
	"github.com/javiermolinar/taskdesk/internal/task"
	"github.com/javiermolinar/taskdesk/internal/taskapi"
	"github.com/javiermolinar/taskdesk/internal/taskapi/taskapitest"
	"github.com/javiermolinar/taskdesk/internal/theme"
	"github.com/javiermolinar/taskdesk/internal/tui/commands"
)

type harness struct {
	srv    *taskapitest.Server
	center *notify.Center
	board  *board.Board
	kv     *store.SQLite
	m      Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := taskapitest.New(
		&task.Task{ID: 42, Title: "Write report", Status: task.StatusDoing, Priority: task.PriorityHigh},
		&task.Task{ID: 7, Title: "Call plumber", Status: task.StatusTodo, Priority: task.PriorityLow},
	)
	t.Cleanup(srv.Close)

	center := notify.New()
	t.Cleanup(center.Close)

	session, err := httpx.NewSession(
		httpx.SessionConfig{BaseURL: srv.URL, Timeout: 5 * time.Second},
		httpx.WithIndicator(httpx.NewSpinner(nil)),
		httpx.WithNotifier(center),
	)
	require.NoError(t, err)
	require.NoError(t, session.Prime(context.Background()))

	kv, err := store.New(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	cfg := config.Default()
	cfg.UI.SearchDelayMs = 20
	cfg.UI.AutosaveDelayMs = 20

	b := board.New()
	m := New(Deps{
		Actions: taskapi.NewActions(taskapi.New(session), center, b),
		Board:   b,
		Center:  center,
		Theme:   theme.NewController(kv, center, theme.Light),
		Drafts:  kv,
		Config:  cfg,
	})
	t.Cleanup(m.shutdown)

	h := &harness{srv: srv, center: center, board: b, kv: kv, m: m}
	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 40})
	h.run(t, h.m.refresh())
	return h
}

func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.m.Update(msg)
	m, ok := next.(Model)
	require.True(t, ok, "Update must return a Model")
	h.m = m
	return cmd
}

// run executes cmd and feeds its message back into the model.
func (h *harness) run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	h.send(t, msg)
	return msg
}

func (h *harness) press(t *testing.T, k string) tea.Cmd {
	t.Helper()
	return h.send(t, keyMsg(k))
}

func (h *harness) messages() []string {
	var out []string
	for _, n := range h.center.Active() {
		out = append(out, string(n.Severity)+": "+n.Message)
	}
	return out
}

func (h *harness) view() string {
	return ansi.Strip(h.m.View())
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestBoardLoadsTasks(t *testing.T) {
	h := newHarness(t)

	require.Len(t, h.m.rows, 2)
	v := h.view()
	assert.Contains(t, v, "Write report")
	assert.Contains(t, v, "Call plumber")
	assert.Contains(t, v, "2 tasks")
}

func TestToggleSelectedTask(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, int64(42), h.m.selected().ID)

	msg := h.run(t, h.press(t, "t"))
	require.IsType(t, commands.ToggledMsg{}, msg)

	got, ok := h.board.Get(42)
	require.True(t, ok)
	assert.Equal(t, "Done", got.Badge())
	assert.Equal(t, task.StatusDone, h.m.selected().Status)
	assert.Contains(t, h.messages(), `success: Status changed to "Done"`)
	assert.Contains(t, h.view(), `Status changed to "Done"`)
}

func TestInsightsShortcutsAndCopy(t *testing.T) {
	orig := commands.WriteClipboard
	t.Cleanup(func() { commands.WriteClipboard = orig })
	var copied string
	commands.WriteClipboard = func(s string) error { copied = s; return nil }

	for _, k := range []string{"I", "tab"} {
		t.Run(k, func(t *testing.T) {
			h := newHarness(t)

			msg := h.run(t, h.press(t, k))
			require.IsType(t, commands.InsightsMsg{}, msg)
			assert.Equal(t, ModalInsights, h.m.modal)
			assert.Contains(t, h.view(), "AI insights")

			h.run(t, h.press(t, "y"))
			assert.Contains(t, copied, "Keep going.")
			assert.Contains(t, h.messages(), "success: "+commands.CopiedMessage)

			h.press(t, "esc")
			assert.Equal(t, ModeNormal, h.m.mode)
			assert.Equal(t, ModalNone, h.m.modal)
		})
	}
}

func TestInsightsServerFailure(t *testing.T) {
	h := newHarness(t)
	h.srv.InsightsStatus = 500

	msg := h.run(t, h.press(t, "I"))
	require.IsType(t, commands.ErrMsg{}, msg)
	assert.Equal(t, ModeNormal, h.m.mode)
	assert.Nil(t, h.m.report)
	assert.Equal(t, []string{"error: " + httpx.ConnectionErrorMessage}, h.messages())
}

func TestCopyWithoutReportWarns(t *testing.T) {
	h := newHarness(t)

	assert.Nil(t, h.press(t, "y"))
	assert.Equal(t, []string{"warning: " + NoInsightsMessage}, h.messages())
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t)

	msg := h.run(t, h.press(t, "ctrl+t"))
	assert.Equal(t, commands.ThemeChangedMsg{Name: theme.Dark}, msg)
	assert.True(t, h.m.styles.Palette().Dark)
	assert.Contains(t, h.messages(), "info: Dark theme enabled")

	stored, ok, err := h.kv.Get(context.Background(), theme.StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, theme.Dark, stored)
}

func TestEscDismissesNewestNotification(t *testing.T) {
	h := newHarness(t)
	_, err := h.center.Notify("first", notify.SeverityInfo, time.Minute)
	require.NoError(t, err)
	second, err := h.center.Notify("second", notify.SeverityInfo, time.Minute)
	require.NoError(t, err)

	h.press(t, "esc")
	state, ok := h.center.State(second.ID)
	if ok {
		assert.NotEqual(t, notify.StateVisible, state)
	}
}

func TestSearchIsDebounced(t *testing.T) {
	h := newHarness(t)

	h.press(t, "/")
	require.Equal(t, ModeSearch, h.m.mode)

	h.press(t, "W")
	select {
	case msg := <-h.m.bridge.ch:
		t.Fatalf("single character must not search, got %#v", msg)
	case <-time.After(80 * time.Millisecond):
	}

	h.press(t, "r")
	select {
	case msg := <-h.m.bridge.ch:
		assert.Equal(t, SearchMsg{Query: "Wr"}, msg)
	case <-time.After(time.Second):
		t.Fatal("expected a debounced search")
	}

	msg := h.run(t, h.press(t, "enter"))
	loaded, ok := msg.(commands.TasksLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "Wr", loaded.Filter.Search)
	assert.Equal(t, ModeNormal, h.m.mode)
	require.Len(t, h.m.rows, 1)
	assert.Equal(t, int64(42), h.m.rows[0].ID)

	msg = h.run(t, func() tea.Cmd { h.press(t, "/"); return h.press(t, "esc") }())
	loaded = msg.(commands.TasksLoadedMsg)
	assert.Empty(t, loaded.Filter.Search)
	assert.Len(t, h.m.rows, 2)
}

func TestFormValidationAndAutosave(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.press(t, "ctrl+n")
	require.Equal(t, ModalTaskForm, h.m.modal)

	h.press(t, "ctrl+s")
	assert.Equal(t, `The field "Title" is required.`, h.m.form.errs.First(form.FieldTitle))
	assert.Contains(t, h.messages(), "error: "+taskapi.FormInvalidMessage)

	h.press(t, "Buy milk")
	select {
	case msg := <-h.m.bridge.ch:
		assert.Equal(t, DraftSavedMsg{}, msg)
		h.send(t, msg)
	case <-time.After(time.Second):
		t.Fatal("expected the draft to be saved")
	}
	assert.True(t, h.m.form.draftSaved)

	key := autosave.Key(FormID, form.FieldTitle)
	v, ok, err := h.kv.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", v)

	h.press(t, "esc")
	assert.Nil(t, h.m.form)

	h.press(t, "ctrl+n")
	assert.Equal(t, "Buy milk", h.m.form.title.Value())
	assert.Equal(t, []string{form.FieldTitle}, h.m.form.restored)

	msg := h.run(t, h.press(t, "ctrl+s"))
	require.IsType(t, commands.CreatedMsg{}, msg)
	assert.Equal(t, ModalNone, h.m.modal)
	assert.Equal(t, 3, h.srv.Len())
	assert.Contains(t, h.messages(), "success: "+taskapi.TaskCreatedMessage)

	_, ok, err = h.kv.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "submitting clears the draft")
}

func TestPendingStartsSpinner(t *testing.T) {
	h := newHarness(t)

	assert.NotNil(t, h.send(t, PendingMsg{Count: 1}))
	assert.Equal(t, 1, h.m.pending)
	h.send(t, PendingMsg{Count: 0})
	assert.Equal(t, 0, h.m.pending)
}

func TestPendingReadsLiveCount(t *testing.T) {
	h := newHarness(t)
	sp := httpx.NewSpinner(nil)
	h.m.deps.Spinner = sp

	// the update announcing the call's end was lost
	p := sp.Show()
	p.Hide()
	h.send(t, PendingMsg{Count: 1})
	assert.Equal(t, 0, h.m.pending)

	p = sp.Show()
	defer p.Hide()
	assert.NotNil(t, h.send(t, PendingMsg{Count: 0}))
	assert.Equal(t, 1, h.m.pending)
}

func TestConfigReload(t *testing.T) {
	h := newHarness(t)

	cfg := config.Default()
	cfg.UI.SearchDelayMs = 250
	h.send(t, ConfigReloadedMsg{Config: cfg})
	assert.Same(t, cfg, h.m.cfg)
	assert.Contains(t, h.messages(), "info: "+ConfigReloadedMessage)

	h.send(t, ConfigReloadedMsg{Err: os.ErrNotExist})
	assert.Same(t, cfg, h.m.cfg)
	assert.Contains(t, h.messages(), "warning: "+ConfigReloadFailMessage)
}

func TestConfigWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0o644))

	b := NewBridge()
	w, err := NewConfigWatcher(path, b)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0o644))

	select {
	case msg := <-b.ch:
		reloaded, ok := msg.(ConfigReloadedMsg)
		require.True(t, ok, "unexpected %T", msg)
		require.NoError(t, reloaded.Err)
		assert.Equal(t, "dark", reloaded.Config.UI.Theme)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a config reload")
	}
}

func TestViewFitsScreen(t *testing.T) {
	h := newHarness(t)
	_, err := h.center.Notify("Saved", notify.SeveritySuccess, time.Minute)
	require.NoError(t, err)

	lines := strings.Split(h.m.View(), "\n")
	assert.Len(t, lines, 40)
	assert.Contains(t, h.view(), "Saved")
}
