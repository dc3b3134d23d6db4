package tui

import (
	"context"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"go-rhythm/debug"
	"go-rhythm/keymap"
	"go-rhythm/metrics"
	"go-rhythm/midi"
	"go-rhythm/rhythm"
	"go-rhythm/submit"
	"go-rhythm/theme"
	"go-rhythm/widgets"
)

const (
	frameRate     = time.Second / 30
	submitTimeout = 15 * time.Second
)

// Submitter is the server side of the three pages
type Submitter interface {
	Signup(ctx context.Context, username, email string, p rhythm.Pattern) (*submit.Result, error)
	Login(ctx context.Context, username string, p rhythm.Pattern) (*submit.Result, error)
	ChangePassword(ctx context.Context, old, next rhythm.Pattern) (*submit.Result, error)
	Logout(ctx context.Context) error
	LoggedIn() bool
}

// Deps are the collaborators a Model drives. Everything but Theme is optional.
type Deps struct {
	Theme        *theme.Theme
	Submitter    Submitter
	Sounders     []rhythm.Sounder
	Surface      *midi.Surface
	Devices      *midi.DeviceManager
	Metrics      *metrics.Metrics
	MinBeats     int
	ToneDuration time.Duration
	Clock        rhythm.Clock
}

// layoutBounds holds where the last View put things, for mouse hit tests
type layoutBounds struct {
	keyRows []keyRow
}

type keyRow struct {
	slot int
	top  int // first line of the keyboard
	left int // first column of the keyboard
}

type messageKind int

const (
	msgInfo messageKind = iota
	msgSuccess
	msgError
)

type Model struct {
	deps   Deps
	Theme  *theme.Theme
	page   Page
	engine *rhythm.Engine
	pulses *pulses

	fields []textinput.Model
	focus  int // fields first, then slots

	help       help.Model
	message    string
	messageKin messageKind
	submitting bool
	devices    map[string]midi.ControllerType
	bounds     *layoutBounds
	quitting   bool
}

// UpdateMsg is sent when the page's engine changed state
type UpdateMsg struct{ engine *rhythm.Engine }

type frameMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type logoutResultMsg struct{ err error }

type submitResultMsg struct {
	page    Page
	message string
	err     error
}

// NewModel builds the model showing page
func NewModel(page Page, deps Deps) Model {
	if deps.Theme == nil {
		deps.Theme = theme.New(nil)
	}
	now := time.Now
	if deps.Clock != nil {
		now = deps.Clock.Now
	}
	m := Model{
		deps:    deps,
		Theme:   deps.Theme,
		pulses:  newPulses(now),
		help:    help.New(),
		devices: make(map[string]midi.ControllerType),
		bounds:  &layoutBounds{},
	}
	m.setPage(page)
	return m
}

// Page returns the page on screen
func (m Model) Page() Page { return m.page }

// Engine returns the current page's engine
func (m Model) Engine() *rhythm.Engine { return m.engine }

// setPage tears down the previous engine and builds the page's slots
func (m *Model) setPage(page Page) {
	if m.engine != nil {
		m.engine.Close()
		if m.deps.Metrics != nil {
			m.deps.Metrics.ResetRecording()
		}
	}
	m.page = page

	pulser := fanPulser{m.pulses}
	if m.deps.Surface != nil {
		pulser = append(pulser, m.deps.Surface)
	}
	minBeats := m.deps.MinBeats
	if minBeats <= 0 {
		minBeats = rhythm.DefaultMinBeats
	}
	e, err := rhythm.New(rhythm.Config{
		Slots:        page.Slots(minBeats),
		MinBeats:     m.deps.MinBeats,
		ToneDuration: m.deps.ToneDuration,
		Sounders:     m.deps.Sounders,
		Pulser:       pulser,
		OnEvent:      m.observer(),
		Clock:        m.deps.Clock,
	})
	if err != nil {
		// page presets are static; this is a programming error
		panic(err)
	}
	m.engine = e
	if m.deps.Surface != nil {
		m.deps.Surface.Bind(e)
	}

	m.fields = nil
	for _, name := range page.Fields() {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = name
		ti.CharLimit = 64
		m.fields = append(m.fields, ti)
	}
	m.message = ""
	m.submitting = false
	m.setFocus(0)
	debug.Log("tui", "page %s", page)
}

func (m *Model) observer() func(rhythm.Event) {
	met, surf := m.deps.Metrics, m.deps.Surface
	return func(ev rhythm.Event) {
		if met != nil {
			met.Observe(ev)
		}
		if surf != nil {
			surf.Observe(ev)
		}
	}
}

func (m *Model) focusCount() int {
	return len(m.fields) + len(m.engine.Slots())
}

// setFocus moves focus to index i (wrapping) and blurs everything else
func (m *Model) setFocus(i int) {
	n := m.focusCount()
	m.focus = ((i % n) + n) % n
	for j := range m.fields {
		if j == m.focus {
			m.fields[j].Focus()
		} else {
			m.fields[j].Blur()
		}
	}
	if s := m.focusedSlot(); s != nil {
		m.engine.Focus(s)
	}
}

func (m Model) inTextField() bool {
	return m.focus < len(m.fields)
}

// focusedSlot returns the slot with focus, or nil when a field has it
func (m Model) focusedSlot() *rhythm.Slot {
	i := m.focus - len(m.fields)
	slots := m.engine.Slots()
	if i < 0 || i >= len(slots) {
		return nil
	}
	return slots[i]
}

// actionSlot is the slot record/play/clear act on: the focused one, or the
// first when a field has focus
func (m Model) actionSlot() *rhythm.Slot {
	if s := m.focusedSlot(); s != nil {
		return s
	}
	return m.engine.Slots()[0]
}

func ListenForUpdates(e *rhythm.Engine) tea.Cmd {
	return func() tea.Msg {
		<-e.Updates()
		return UpdateMsg{engine: e}
	}
}

func ListenForDevices(dm *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-dm.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func frame() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.engine), textinput.Blink}
	if m.deps.Devices != nil {
		cmds = append(cmds, ListenForDevices(m.deps.Devices))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y)
		}
		return m, m.frameIfLit()

	case UpdateMsg:
		if msg.engine != m.engine {
			return m, nil // engine of a page we left
		}
		return m, tea.Batch(ListenForUpdates(m.engine), m.frameIfLit())

	case frameMsg:
		return m, m.frameIfLit()

	case DeviceEventMsg:
		ev := midi.DeviceEvent(msg)
		switch ev.Type {
		case midi.DeviceConnected:
			m.devices[ev.ID] = ev.Controller.Type()
			if m.deps.Surface != nil {
				m.deps.Surface.Attach(ev.Controller)
			}
		case midi.DeviceDisconnected:
			delete(m.devices, ev.ID)
			if m.deps.Surface != nil {
				m.deps.Surface.Detach(ev.ID)
			}
		}
		return m, ListenForDevices(m.deps.Devices)

	case submitResultMsg:
		if msg.page != m.page {
			return m, nil
		}
		m.submitting = false
		outcome := "ok"
		if msg.err != nil {
			m.setMessage(msgError, userMessage(msg.err))
			outcome = "rejected"
		} else {
			m.setMessage(msgSuccess, msg.message)
		}
		if m.deps.Metrics != nil {
			m.deps.Metrics.IncSubmission(string(msg.page), outcome)
		}
		return m, nil

	case logoutResultMsg:
		if msg.err != nil {
			m.setMessage(msgError, userMessage(msg.err))
		} else {
			m.setMessage(msgSuccess, "Logged out.")
		}
		return m, nil
	}

	return m, m.updateField(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// bindings that work everywhere
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.engine.Close()
		return *m, tea.Quit
	case key.Matches(msg, keys.Next):
		m.setFocus(m.focus + 1)
		return *m, nil
	case key.Matches(msg, keys.Prev):
		m.setFocus(m.focus - 1)
		return *m, nil
	case key.Matches(msg, keys.Login):
		m.setPage(PageLogin)
		return *m, ListenForUpdates(m.engine)
	case key.Matches(msg, keys.Signup):
		m.setPage(PageSignup)
		return *m, ListenForUpdates(m.engine)
	case key.Matches(msg, keys.Change):
		m.setPage(PageChange)
		return *m, ListenForUpdates(m.engine)
	case key.Matches(msg, keys.Logout):
		return *m, m.logout()
	case key.Matches(msg, keys.Submit):
		return *m, m.submit()
	case msg.String() == "ctrl+r":
		m.actionSlot().Toggle()
		return *m, nil
	case key.Matches(msg, keys.Play):
		m.play(m.actionSlot())
		return *m, nil
	case key.Matches(msg, keys.Clear):
		m.actionSlot().Clear()
		return *m, nil
	}

	if m.inTextField() {
		return *m, m.updateField(msg)
	}

	switch {
	case key.Matches(msg, keys.Record):
		m.actionSlot().Toggle()
		return *m, nil
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return *m, nil
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if m.engine.KeyDown(string(msg.Runes), false) {
			return *m, m.frameIfLit()
		}
	}
	return *m, nil
}

func (m *Model) updateField(msg tea.Msg) tea.Cmd {
	if !m.inTextField() {
		return nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return cmd
}

func (m *Model) play(s *rhythm.Slot) {
	if !s.CanPlay() {
		m.setMessage(msgInfo, s.StatusText())
		return
	}
	s.Play()
}

// click activates the key cell under (x, y), focusing its slot
func (m *Model) click(x, y int) {
	for _, row := range m.bounds.keyRows {
		if y < row.top || y >= row.top+widgets.KeyboardHeight {
			continue
		}
		k, ok := widgets.KeyAt(x - row.left)
		if !ok {
			return
		}
		slot := m.engine.Slots()[row.slot]
		if m.focusedSlot() != slot {
			m.setFocus(len(m.fields) + row.slot)
		}
		note, _ := keymap.NoteFor(k)
		slot.Activate(k, note)
		return
	}
}

func (m *Model) frameIfLit() tea.Cmd {
	if m.pulses.Active() {
		return frame()
	}
	return nil
}

func (m *Model) setMessage(kind messageKind, text string) {
	m.messageKin = kind
	m.message = text
}

func (m Model) field(name string) string {
	for i, f := range m.page.Fields() {
		if f == name {
			return m.fields[i].Value()
		}
	}
	return ""
}

// submit validates locally and returns the command that calls the server
func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	patterns, err := m.engine.Submission()
	if err != nil {
		m.setMessage(msgError, userMessage(err))
		if m.deps.Metrics != nil {
			m.deps.Metrics.IncSubmission(string(m.page), "incomplete")
		}
		return nil
	}
	for _, name := range m.page.Fields() {
		if m.field(name) == "" {
			m.setMessage(msgError, "Please enter your "+name+".")
			return nil
		}
	}
	if m.deps.Submitter == nil {
		m.setMessage(msgError, "No server configured.")
		return nil
	}

	m.submitting = true
	m.setMessage(msgInfo, "Submitting...")
	page, sub := m.page, m.deps.Submitter
	username, email := m.field("username"), m.field("email")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		var res *submit.Result
		var err error
		switch page {
		case PageSignup:
			res, err = sub.Signup(ctx, username, email, patterns[0])
		case PageChange:
			res, err = sub.ChangePassword(ctx, patterns[0], patterns[1])
		default:
			res, err = sub.Login(ctx, username, patterns[0])
		}
		if err != nil {
			debug.Log("tui", "%s submit: %v", page, err)
			return submitResultMsg{page: page, err: err}
		}
		return submitResultMsg{page: page, message: res.Message}
	}
}

// logout ends the server session
func (m *Model) logout() tea.Cmd {
	sub := m.deps.Submitter
	if sub == nil {
		m.setMessage(msgError, "No server configured.")
		return nil
	}
	if !sub.LoggedIn() {
		m.setMessage(msgInfo, "Not logged in.")
		return nil
	}
	m.setMessage(msgInfo, "Logging out...")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		err := sub.Logout(ctx)
		if err != nil {
			debug.Log("tui", "logout: %v", err)
		}
		return logoutResultMsg{err: err}
	}
}

// userMessage prefers the text written for the user
func userMessage(err error) string {
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}
