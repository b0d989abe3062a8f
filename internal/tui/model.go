package tui

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/course"
)

// viewMode selects the main body.
type viewMode int

const (
	modeList viewMode = iota
	modeGraph
)

func (v viewMode) String() string {
	if v == modeGraph {
		return "graph"
	}
	return "list"
}

// AppModel is the root BubbleTea model. All course state lives on the App;
// the model keeps only cursors, inputs and transient notices.
type AppModel struct {
	App       *course.App
	Keys      KeyMap
	List      ListView
	Graph     GraphView
	Detail    DetailPanel
	StatusBar StatusBar
	Footer    Footer
	Search    textinput.Model
	Login     *LoginForm
	Notices   []Notice

	// FrameInterval paces the layout animation.
	FrameInterval time.Duration

	ctx       context.Context
	mode      viewMode
	searching bool
	mouseDrag bool
	width     int
	height    int
	// pending counts background operations that have not reported back.
	pending int
	// loopGen is the layout generation the frame loop is driving. Frames
	// for any other generation are dropped.
	loopGen uint64
}

// NewAppModel creates the root model around app. Blocking App calls made
// from commands use ctx.
func NewAppModel(ctx context.Context, app *course.App) AppModel {
	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "text, or category:name"
	search.CharLimit = 128

	m := AppModel{
		App:           app,
		Keys:          DefaultKeyMap(),
		Detail:        NewDetailPanel(80, detailHeight),
		StatusBar:     StatusBar{Spinner: newBusySpinner()},
		Search:        search,
		FrameInterval: DefaultFrameInterval,
		ctx:           ctx,
		width:         80,
		height:        DetailCollapseHeight,
	}
	m.resize()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		if m.mode == modeGraph {
			m.App.Resize(m.graphViewport())
		}
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)
	case tea.MouseMsg:
		m = m.handleMouse(msg)
	case MsgFrame:
		cmd = m.handleFrame(msg)
	case MsgRebuilt:
		if m.mode == modeGraph && msg.Gen != m.loopGen && msg.Gen == m.App.Generation() {
			m.loopGen = msg.Gen
			cmd = frameCmd(msg.Gen, m.FrameInterval)
		}
	case MsgNotice:
		var n Notice
		n, cmd = NewNotice(msg.Level, msg.Text)
		m.Notices = pushNotice(m.Notices, n)
	case MsgNoticeExpired:
		m.Notices = removeNotice(m.Notices, msg.ID)
	case spinner.TickMsg:
		cmd = m.spin(msg)
	case MsgDone:
		m.settle()
		m.handleDone(msg)
	case MsgSearchDone:
		m.settle()
		m.List.Cursor, m.List.Offset = 0, 0
	}
	m.refresh()
	return m, cmd
}

// handleFrame advances the layout one tick and schedules the next frame
// while its generation is still current.
func (m AppModel) handleFrame(msg MsgFrame) tea.Cmd {
	if m.mode != modeGraph || msg.Gen != m.loopGen {
		return nil
	}
	m.App.Tick(msg.Gen)
	if m.App.Generation() != msg.Gen {
		return nil
	}
	return frameCmd(msg.Gen, m.FrameInterval)
}

func (m *AppModel) handleDone(msg MsgDone) {
	switch msg.Op {
	case "login", "register":
		if m.Login == nil {
			return
		}
		if msg.Err != nil {
			m.Login.Err = msg.Err.Error()
			return
		}
		m.Login = nil
	}
}

func (m AppModel) toggleMode() (AppModel, tea.Cmd) {
	if m.mode == modeGraph {
		m.dropGrabbed()
		m.App.DeactivateGraph()
		m.mode = modeList
		m.loopGen = 0
		return m, nil
	}
	focused, _ := m.focusedID()
	m.mode = modeGraph
	m.loopGen = m.App.ActivateGraph(m.graphViewport())
	m.setGraphCursor(focused)
	return m, frameCmd(m.loopGen, m.FrameInterval)
}

func (m *AppModel) setGraphCursor(id string) {
	g := m.App.Graph()
	if g == nil {
		return
	}
	if i := g.Index(id); i >= 0 {
		m.Graph.Cursor = i
	}
}

func (m *AppModel) moveCursor(delta int) {
	if m.mode == modeGraph {
		n := 0
		if g := m.App.Graph(); g != nil {
			n = g.Len()
		}
		m.Graph.MoveCursor(delta, n)
		return
	}
	n := len(m.App.Visible())
	if delta < 0 {
		m.List.MoveUp(n)
	} else {
		m.List.MoveDown(n)
	}
}

// focusedID returns the module the keyboard acts on in the current view.
func (m AppModel) focusedID() (string, bool) {
	if m.mode == modeGraph {
		g := m.App.Graph()
		if g == nil || m.Graph.Cursor < 0 || m.Graph.Cursor >= g.Len() {
			return "", false
		}
		return g.Nodes[m.Graph.Cursor].ID, true
	}
	return m.List.Selected(m.App.Visible())
}

// nextCategory cycles the category filter through every category and then
// back to all of them, keeping the search text.
func (m AppModel) nextCategory() catalog.Filter {
	f := m.App.Filter()
	cats := m.App.Categories()
	i := slices.Index(cats, f.Category)
	switch {
	case len(cats) == 0:
		f.Category = ""
	case f.Category == "":
		f.Category = cats[0]
	case i < 0 || i == len(cats)-1:
		f.Category = ""
	default:
		f.Category = cats[i+1]
	}
	return f
}

// parseQuery splits a search line into text and a category:name (or
// cat:name) token.
func parseQuery(q string) catalog.Filter {
	var f catalog.Filter
	var words []string
	for _, w := range strings.Fields(q) {
		if v, ok := strings.CutPrefix(w, "category:"); ok {
			f.Category = v
			continue
		}
		if v, ok := strings.CutPrefix(w, "cat:"); ok {
			f.Category = v
			continue
		}
		words = append(words, w)
	}
	f.Text = strings.Join(words, " ")
	return f
}

func (m AppModel) searchCmd(f catalog.Filter) tea.Cmd {
	app, ctx := m.App, m.ctx
	return func() tea.Msg {
		mods, fallback := app.Search(ctx, f)
		return MsgSearchDone{Results: len(mods), Fallback: fallback}
	}
}

func (m AppModel) progressCmd(op, id string, status catalog.Status) tea.Cmd {
	app, ctx := m.App, m.ctx
	return func() tea.Msg {
		var err error
		if status == catalog.StatusInProgress {
			err = app.StartModule(ctx, id)
		} else {
			err = app.SetStatus(ctx, id, status)
		}
		return MsgDone{Op: op, Err: err}
	}
}

func (m AppModel) loginCmd(f *LoginForm) tea.Cmd {
	app, ctx := m.App, m.ctx
	register := f.Register
	name, email, password := f.Name.Value(), f.Email.Value(), f.Password.Value()
	return func() tea.Msg {
		if register {
			_, err := app.Register(ctx, name, email, password)
			return MsgDone{Op: "register", Err: err}
		}
		_, err := app.Login(ctx, email, password)
		return MsgDone{Op: "login", Err: err}
	}
}

func (m AppModel) logoutCmd() tea.Cmd {
	app, ctx := m.App, m.ctx
	return func() tea.Msg {
		return MsgDone{Op: "logout", Err: app.Logout(ctx)}
	}
}

// graphViewport returns the canvas size in layout units.
func (m AppModel) graphViewport() (width, height float64) {
	return float64(m.Graph.Width) * cellWidth, float64(m.Graph.Height) * cellHeight
}

func (m *AppModel) resize() {
	body := bodyHeight(m.height, showDetail(m.height))
	m.List.Width, m.List.Height = m.width, body
	m.Graph.Width, m.Graph.Height = m.width, body
	m.Detail.SetSize(max(10, m.width-4), detailHeight)
	m.Search.Width = max(10, m.width-4)
	m.Footer.Width = m.width
	m.StatusBar.Width = m.width
}

// refresh pulls what the chrome shows from the App.
func (m *AppModel) refresh() {
	mods := m.App.Visible()
	m.List.Clamp(len(mods))

	if id, ok := m.focusedID(); ok {
		if title, body, found := moduleDetail(m.App, id); found {
			m.Detail.SetContent(title, body)
		}
	} else {
		m.Detail.SetEmpty("No module selected")
	}

	m.StatusBar.Mode = m.mode.String()
	m.StatusBar.Stats = m.App.Overview()
	m.StatusBar.Filter = m.App.Filter()
	m.StatusBar.Shown = len(mods)
	m.StatusBar.User = ""
	if u := m.App.User(); u != nil {
		m.StatusBar.User = u.Name
	}

	switch {
	case m.Login != nil, m.searching:
		m.Footer.Bindings = FormFooterBindings(m.Keys)
	case m.mode == modeGraph:
		m.Footer.Bindings = GraphFooterBindings(m.Keys, m.Graph.Grabbed != "")
	default:
		km := m.Keys
		if m.App.User() != nil {
			km.Login.SetHelp("L", "logout")
		}
		m.Footer.Bindings = ListFooterBindings(km)
	}
}

// View implements tea.Model.
func (m AppModel) View() string {
	if m.width < MinWidth || m.height < MinHeight {
		return styleDetailDim.Render("Terminal too small")
	}

	var extra []string
	if m.mode == modeGraph {
		extra = append(extra, " "+legend())
	}
	if m.searching {
		extra = append(extra, styleSearchPrompt.Render(" / ")+m.Search.View())
	}
	if notices := RenderNotices(m.Notices, m.width); notices != "" {
		extra = append(extra, notices)
	}
	reserved := 0
	for _, e := range extra {
		reserved += lipgloss.Height(e)
	}

	detail := showDetail(m.height)
	bodyRows := max(1, bodyHeight(m.height, detail)-reserved)

	var body string
	if m.mode == modeGraph {
		body = m.Graph.Render(sceneFrom(m.App))
	} else {
		body = m.List.View(m.App.Visible(), m.rowInfo)
	}
	body = lipgloss.NewStyle().Height(bodyRows).MaxHeight(bodyRows).Render(body)

	parts := []string{m.StatusBar.View(), body}
	if detail {
		parts = append(parts, m.Detail.View())
	}
	parts = append(parts, extra...)
	parts = append(parts, m.Footer.View())
	screen := strings.Join(parts, "\n")

	if m.Login != nil {
		return compositeOverlay(screen, m.Login.View(), m.width, m.height)
	}
	return screen
}

func (m AppModel) rowInfo(id string) rowInfo {
	return rowInfo{available: m.App.IsAvailable(id), card: m.App.CardClass(id)}
}
