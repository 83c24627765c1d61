package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazydb/internal/config"
	"github.com/rebeliceyang/lazydb/internal/db"
	"github.com/rebeliceyang/lazydb/internal/export"
	"github.com/rebeliceyang/lazydb/internal/logging"
	"github.com/rebeliceyang/lazydb/internal/models"
	"github.com/rebeliceyang/lazydb/internal/ui/components"
	"github.com/rebeliceyang/lazydb/internal/ui/help"
	"github.com/rebeliceyang/lazydb/internal/ui/theme"
	"github.com/rebeliceyang/lazydb/internal/viewstate"
	"github.com/rebeliceyang/lazydb/internal/vtable"
)

// Options configure an App.
type Options struct {
	Config *config.Config
	Source db.Source

	// Store persists view state. Nil disables persistence.
	Store  *viewstate.Store
	Logger *slog.Logger

	// Query is run once the UI starts.
	Query        string
	ExportDir    string
	ExportFormat export.Format
}

// App is the main application model
type App struct {
	state  models.AppState
	config *config.Config
	theme  theme.Theme
	logger *slog.Logger

	source       db.Source
	store        *viewstate.Store
	query        string
	exportDir    string
	exportFormat export.Format

	ctx     context.Context
	cancel  context.CancelFunc
	watchCh <-chan struct{}

	navigator  *components.Navigator
	tabs       *components.ResultTabs
	preview    *components.PreviewPane
	rightPanel components.Panel

	// Error overlay
	showError    bool
	errorOverlay *components.ErrorOverlay
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// TablesLoadedMsg is sent when the table list is loaded
type TablesLoadedMsg struct {
	Tables []db.TableRef
	// Recent is the most recently viewed table of this source, if any.
	Recent string
	Err    error
}

// PageLoadedMsg is sent when a table page, schema or query result arrives
type PageLoadedMsg struct {
	Kind  vtable.TableKind
	Ref   db.TableRef
	SQL   string
	Page  *db.Page
	State *vtable.ViewState
	Err   error
}

// SourceChangedMsg is sent when the database changed on disk
type SourceChangedMsg struct{}

type watchStartedMsg struct {
	ch  <-chan struct{}
	err error
}

// New creates a new App instance
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	format := opts.ExportFormat
	if format == "" {
		format = export.FormatCSV
	}

	th := theme.GetTheme(cfg.UI.Theme)

	state := models.NewAppState()
	if cfg.UI.PanelWidthRatio > 0 && cfg.UI.PanelWidthRatio < 100 {
		state.LeftPanelWidth = cfg.UI.PanelWidthRatio
	}
	if opts.Source != nil {
		state.SourceName = opts.Source.Name()
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		state:        state,
		config:       cfg,
		theme:        th,
		logger:       logger,
		source:       opts.Source,
		store:        opts.Store,
		query:        opts.Query,
		exportDir:    opts.ExportDir,
		exportFormat: format,
		ctx:          ctx,
		cancel:       cancel,
		navigator:    components.NewNavigator(th),
		tabs:         components.NewResultTabs(th),
		preview:      components.NewPreviewPane(th),
		errorOverlay: components.NewErrorOverlay(th),
		rightPanel:   components.Panel{Theme: th},
	}
	a.preview.JSONFormat = cfg.Data.JSONBAutoFormat
	a.updatePanelDimensions()

	return a
}

// Close stops background work started by the app.
func (a *App) Close() {
	a.cancel()
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	a.state.Loading = true
	cmds := []tea.Cmd{a.loadTables(), a.startWatch()}
	if strings.TrimSpace(a.query) != "" {
		cmds = append(cmds, a.runQuery(a.query))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.MouseMsg:
		if view := a.tabs.ActiveView(); view != nil && a.state.ViewMode == models.NormalMode {
			_, cmd := view.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		return a, a.layout()

	case TablesLoadedMsg:
		a.state.Loading = false
		if msg.Err != nil {
			a.ShowError("Database Error", fmt.Sprintf("Failed to list tables:\n\n%v", msg.Err))
			return a, nil
		}
		a.navigator.SetTables(msg.Tables)
		if msg.Recent != "" {
			for _, ref := range msg.Tables {
				if ref.String() == msg.Recent {
					a.navigator.Select(ref)
					break
				}
			}
		}
		return a, nil

	case PageLoadedMsg:
		return a, a.handlePageLoaded(msg)

	case components.OpenTableMsg:
		if msg.Schema {
			return a, a.loadSchema(msg.Ref)
		}
		return a, a.loadPage(msg.Ref, 0)

	case components.FrameMsg:
		// Background tabs still finish their pending frame.
		if tab := a.tabs.ByTableID(msg.TableID); tab != nil {
			_, cmd := tab.View.Update(msg)
			return a, cmd
		}
		return a, nil

	case components.ViewStateMsg:
		a.persistViewState(msg)
		return a, nil

	case components.PreviewMsg:
		a.preview.Show(msg.Title, msg.Content)
		a.state.ViewMode = models.PreviewMode
		return a, a.layout()

	case components.ExportedMsg:
		if msg.Err != nil {
			a.logger.Error("export failed", "path", msg.Path, "error", msg.Err)
		} else {
			a.logger.Info("rows exported", "path", msg.Path, "rows", msg.Rows)
		}
		return a, a.forward(msg)

	case watchStartedMsg:
		if msg.err != nil {
			a.logger.Warn("change watch unavailable", "error", msg.err)
			return a, nil
		}
		a.watchCh = msg.ch
		return a, waitForChange(a.watchCh)

	case SourceChangedMsg:
		a.logger.Debug("source changed on disk")
		return a, tea.Batch(a.reload(), waitForChange(a.watchCh))
	}

	return a, a.forward(msg)
}

// forward hands msg to the active table view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	view := a.tabs.ActiveView()
	if view == nil {
		return nil
	}
	_, cmd := view.Update(msg)
	return cmd
}

// typing reports whether the focused component owns every key.
func (a *App) typing() bool {
	if a.state.FocusedPanel == models.LeftPanel {
		return a.navigator.Filtering()
	}
	view := a.tabs.ActiveView()
	return view != nil && view.Searching()
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	if a.showError {
		switch msg.String() {
		case "esc", "enter":
			a.DismissError()
		}
		return nil
	}

	switch a.state.ViewMode {
	case models.HelpMode:
		switch msg.String() {
		case "?", "esc", "q":
			a.state.ViewMode = models.NormalMode
		}
		return nil
	case models.PreviewMode:
		cmd := a.preview.Update(msg)
		if !a.preview.Visible {
			a.state.ViewMode = models.NormalMode
			return tea.Batch(cmd, a.layout())
		}
		return cmd
	}

	if a.typing() {
		if a.state.FocusedPanel == models.LeftPanel {
			return a.navigator.Update(msg)
		}
		return a.forward(msg)
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "?":
		a.state.ViewMode = models.HelpMode
		return nil
	case "tab":
		a.toggleFocus()
		return nil
	case "r", "f5":
		return a.reload()
	}

	if a.state.FocusedPanel == models.LeftPanel {
		return a.navigator.Update(msg)
	}

	switch msg.String() {
	case "]":
		return a.nextPage()
	case "[":
		return a.prevPage()
	case "ctrl+right":
		a.tabs.NextTab()
		return nil
	case "ctrl+left":
		a.tabs.PrevTab()
		return nil
	case "x":
		a.tabs.CloseActive()
		if !a.tabs.HasTabs() {
			a.state.FocusedPanel = models.LeftPanel
		}
		return nil
	}

	return a.forward(msg)
}

func (a *App) toggleFocus() {
	if a.state.FocusedPanel == models.LeftPanel && a.tabs.HasTabs() {
		a.state.FocusedPanel = models.RightPanel
	} else {
		a.state.FocusedPanel = models.LeftPanel
	}
}

func (a *App) queryTimeout() time.Duration {
	if a.config.Data.QueryTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.config.Data.QueryTimeout) * time.Millisecond
}

func (a *App) pageSize() int {
	if a.config.Data.PageSize <= 0 {
		return 1000
	}
	return a.config.Data.PageSize
}

func (a *App) persisting() bool {
	return a.store != nil && a.config.Storage.Persist
}

func (a *App) stateKey(ref db.TableRef) string {
	return viewstate.Key(a.source.Name(), ref.String())
}

// findTab returns the open data or schema tab for ref.
func (a *App) findTab(kind vtable.TableKind, ref db.TableRef) *components.ResultTab {
	if kind == vtable.TableKindQuery {
		return nil
	}
	for _, tab := range a.tabs.Tabs() {
		if tab.Kind == kind && tab.Table == ref {
			return tab
		}
	}
	return nil
}

func (a *App) loadTables() tea.Cmd {
	source, store, ctx, timeout := a.source, a.store, a.ctx, a.queryTimeout()
	persisting := a.persisting()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		tables, err := source.ListTables(ctx)
		if err != nil {
			return TablesLoadedMsg{Err: err}
		}
		msg := TablesLoadedMsg{Tables: tables}

		if persisting {
			prefix := viewstate.Key(source.Name(), "")
			if recent, err := store.Recent(20); err == nil {
				for _, e := range recent {
					if strings.HasPrefix(e.Key, prefix) {
						msg.Recent = strings.TrimPrefix(e.Key, prefix)
						break
					}
				}
			}
		}
		return msg
	}
}

// loadPage loads one page of ref. A table opened for the first time gets
// its persisted view state; an open one carries its current state over.
func (a *App) loadPage(ref db.TableRef, offset int) tea.Cmd {
	source, store, ctx, timeout, limit := a.source, a.store, a.ctx, a.queryTimeout(), a.pageSize()
	logger := a.logger
	restore := a.persisting() && a.findTab(vtable.TableKindData, ref) == nil
	key := a.stateKey(ref)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		page, err := source.Page(ctx, ref, offset, limit)
		msg := PageLoadedMsg{Kind: vtable.TableKindData, Ref: ref, Page: page, Err: err}
		if err != nil || !restore {
			return msg
		}

		state, err := store.Get(key)
		switch {
		case err == nil:
			msg.State = &state
		case !errors.Is(err, viewstate.ErrNotFound):
			logger.Warn("failed to load view state", "key", key, "error", err)
		}
		return msg
	}
}

func (a *App) loadSchema(ref db.TableRef) tea.Cmd {
	source, ctx, timeout := a.source, a.ctx, a.queryTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		cols, err := source.Columns(ctx, ref)
		if err != nil {
			return PageLoadedMsg{Kind: vtable.TableKindSchema, Ref: ref, Err: err}
		}
		page := &db.Page{
			Page:      *db.SchemaPage(cols),
			TotalRows: int64(len(cols)),
			Duration:  time.Since(start),
		}
		return PageLoadedMsg{Kind: vtable.TableKindSchema, Ref: ref, Page: page}
	}
}

func (a *App) runQuery(sql string) tea.Cmd {
	source, ctx, timeout := a.source, a.ctx, a.queryTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		page, err := source.Query(ctx, sql)
		return PageLoadedMsg{Kind: vtable.TableKindQuery, SQL: sql, Page: page, Err: err}
	}
}

// reload refreshes the table list and the active table or schema tab.
func (a *App) reload() tea.Cmd {
	cmds := []tea.Cmd{a.loadTables()}
	if tab := a.tabs.Active(); tab != nil {
		switch tab.Kind {
		case vtable.TableKindData:
			cmds = append(cmds, a.loadPage(tab.Table, int(tab.Offset)))
		case vtable.TableKindSchema:
			cmds = append(cmds, a.loadSchema(tab.Table))
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) nextPage() tea.Cmd {
	tab := a.tabs.Active()
	if tab == nil || tab.Kind != vtable.TableKindData {
		return nil
	}
	next := tab.Offset + int64(tab.Rows())
	if next >= tab.TotalRows {
		return nil
	}
	return a.loadPage(tab.Table, int(next))
}

func (a *App) prevPage() tea.Cmd {
	tab := a.tabs.Active()
	if tab == nil || tab.Kind != vtable.TableKindData || tab.Offset == 0 {
		return nil
	}
	return a.loadPage(tab.Table, max(int(tab.Offset)-a.pageSize(), 0))
}

func parseOverride(s string) vtable.Override {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "always":
		return vtable.OverrideOn
	case "off", "false", "never":
		return vtable.OverrideOff
	default:
		return vtable.OverrideAuto
	}
}

func (a *App) tableOptions(kind vtable.TableKind) vtable.Options {
	t := a.config.Table
	return vtable.Options{
		Kind:     kind,
		Override: parseOverride(t.Virtualize),
		Thresholds: vtable.Thresholds{
			MinRows:  t.MinRows,
			MinCells: t.MinCells,
		},
		Overscan:      t.Overscan,
		BaseRowHeight: t.BaseRowHeight,
		MinRowHeight:  t.MinRowHeight,
		MaxWindowRows: t.MaxWindowRows,
		Logger:        a.logger,
	}
}

func pageInfo(p *db.Page) string {
	if p.TotalRows == 0 {
		return ""
	}
	if p.Len() == 0 {
		return "rows 0 of " + humanize.Comma(p.TotalRows)
	}
	return fmt.Sprintf("rows %s-%s of %s",
		humanize.Comma(int64(p.StartIndex+1)),
		humanize.Comma(int64(p.StartIndex+p.Len())),
		humanize.Comma(p.TotalRows))
}

func (a *App) handlePageLoaded(msg PageLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		a.showLoadError(msg)
		return nil
	}

	opts := a.tableOptions(msg.Kind)
	existing := a.findTab(msg.Kind, msg.Ref)
	if existing != nil && existing.View.Table().Header().SameColumns(msg.Page.Columns) {
		opts.Header = existing.View.Table().Header()
		vs := existing.View.Table().ViewState()
		opts.Restore = &vs
	} else {
		header := vtable.NewHeader(msg.Page.Columns)
		if a.config.Table.MaxCellWidth > 0 {
			header.MaxWidth = a.config.Table.MaxCellWidth
		}
		opts.Header = header
		opts.Restore = msg.State
	}

	key, title := "", msg.Ref.Name
	switch msg.Kind {
	case vtable.TableKindData:
		if a.persisting() {
			key = a.stateKey(msg.Ref)
		}
	case vtable.TableKindQuery:
		title = components.QueryTitle(msg.SQL)
	}

	view := components.NewTableView(a.theme, &msg.Page.Page, components.TableViewOptions{
		Key:           key,
		Title:         title,
		Table:         opts,
		FrameInterval: a.config.Table.FrameInterval(),
		MaxRowLines:   a.config.Table.MaxRowLines,
		ExportDir:     a.exportDir,
		ExportFormat:  a.exportFormat,
	})
	view.PageInfo = pageInfo(msg.Page)

	a.tabs.Open(&components.ResultTab{
		Kind:      msg.Kind,
		Table:     msg.Ref,
		SQL:       msg.SQL,
		Offset:    int64(msg.Page.StartIndex),
		TotalRows: msg.Page.TotalRows,
		Duration:  msg.Page.Duration,
		View:      view,
	})
	a.state.FocusedPanel = models.RightPanel

	a.logger.Info("page loaded",
		"kind", msg.Kind.String(),
		"table", msg.Ref.String(),
		"rows", msg.Page.Len(),
		"offset", msg.Page.StartIndex,
		"total", msg.Page.TotalRows,
		"duration", msg.Page.Duration)

	return a.layout()
}

func (a *App) showLoadError(msg PageLoadedMsg) {
	what := msg.Ref.String()
	if msg.Kind == vtable.TableKindQuery {
		what = "query"
	}
	a.logger.Error("load failed", "kind", msg.Kind.String(), "target", what, "error", msg.Err)

	switch {
	case errors.Is(msg.Err, db.ErrTableNotFound):
		a.ShowError("Table Not Found", fmt.Sprintf("%s no longer exists.", what))
	case errors.Is(msg.Err, context.DeadlineExceeded):
		a.ShowError("Query Timeout", fmt.Sprintf("Loading %s took longer than %s.", what, a.queryTimeout()))
	default:
		a.ShowError("Database Error", fmt.Sprintf("Failed to load %s:\n\n%v", what, msg.Err))
	}
}

// persistViewState writes the change synchronously so entries land in the
// order the user made them.
func (a *App) persistViewState(msg components.ViewStateMsg) {
	if !a.persisting() || msg.Key == "" {
		return
	}
	if err := a.store.Put(msg.Key, msg.Change.State); err != nil {
		a.logger.Warn("failed to persist view state",
			"key", msg.Key,
			"change", msg.Change.Kind.String(),
			"error", err)
	}
}

func (a *App) startWatch() tea.Cmd {
	w, ok := a.source.(db.Watcher)
	if !ok {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		ch, err := w.Watch(ctx)
		return watchStartedMsg{ch: ch, err: err}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return SourceChangedMsg{}
	}
}

// View implements tea.Model
func (a *App) View() string {
	if a.showError {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	if a.state.ViewMode == models.HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme, components.DefaultTableKeys().Bindings())
	}

	return a.renderNormalView()
}

// renderNormalView renders the normal application view
func (a *App) renderNormalView() string {
	topBarLeft := "lazydb"
	if a.state.SourceName != "" {
		topBarLeft += " · " + a.state.SourceName
	}
	if a.state.Loading {
		topBarLeft += " (loading)"
	}
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Background).
		Padding(0, 2).
		Render(a.formatStatusBar(topBarLeft, "? help"))

	bottomBarLeft := "[tab] Switch panel | [/] Filter | [enter] Open | [S] Schema | [q] Quit"
	bottomBarRight := ""
	if a.state.FocusedPanel == models.RightPanel {
		bottomBarLeft = "[/] Search | [f] Filter | [s] Sort | [p] Pin | [[ ]] Page | [x] Close"
		if tab := a.tabs.Active(); tab != nil {
			bottomBarRight = fmt.Sprintf("%s in %s", humanize.Time(tab.CreatedAt), tab.Duration.Round(time.Millisecond))
		}
	}
	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(bottomBarLeft, bottomBarRight))

	a.navigator.Focused = a.state.FocusedPanel == models.LeftPanel
	a.rightPanel.Active = a.state.FocusedPanel == models.RightPanel

	if view := a.tabs.ActiveView(); view != nil {
		parts := []string{a.tabs.RenderTabBar(a.rightPanel.Width - 2), view.View()}
		if a.preview.Visible {
			parts = append(parts, a.preview.View())
		}
		a.rightPanel.Content = strings.Join(parts, "\n")
	} else {
		a.rightPanel.Content = lipgloss.NewStyle().
			Foreground(a.theme.Metadata).
			Italic(true).
			Render("Select a table to view its rows")
	}

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.navigator.View(),
		a.rightPanel.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		panels,
		bottomBar,
	)
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// Reserve space for top bar (1 line) and bottom bar (1 line)
	contentHeight := max(a.state.Height-2, 5)

	leftWidth := max((a.state.Width*a.state.LeftPanelWidth)/100, 20)
	rightWidth := a.state.Width - leftWidth
	if rightWidth < 20 {
		rightWidth = 20
		leftWidth = max(a.state.Width-rightWidth, 0)
	}

	a.navigator.Width = leftWidth
	a.navigator.Height = contentHeight
	a.rightPanel.Width = rightWidth
	a.rightPanel.Height = contentHeight
}

// layout sizes the panels and every tab's table view.
func (a *App) layout() tea.Cmd {
	a.updatePanelDimensions()

	// Inside the border, below the tab bar.
	w := a.rightPanel.Width - 2
	h := a.rightPanel.Height - 3

	a.preview.Width = w
	a.preview.MaxHeight = max(h/3, 5)
	if a.preview.Visible {
		h -= a.preview.Height()
	}
	return a.tabs.SetSize(w, max(h, 1))
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := max(a.state.Width-4, 0)

	leftLen := runewidth.StringWidth(left)
	rightLen := runewidth.StringWidth(right)

	if leftLen+rightLen > availableWidth {
		if availableWidth > rightLen {
			return runewidth.Truncate(left, availableWidth-rightLen, "") + right
		}
		return runewidth.Truncate(left, availableWidth, "")
	}

	return left + strings.Repeat(" ", availableWidth-leftLen-rightLen) + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}
