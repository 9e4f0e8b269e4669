package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bookbuddy/bbx/internal/models"
	"github.com/bookbuddy/bbx/internal/services"
	"github.com/bookbuddy/bbx/internal/store"
	"github.com/bookbuddy/bbx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	SearchView
	TrackerView
	ConfirmView
	AddView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	session      *store.SessionStore
	library      *store.LibraryStore
	tracker      *store.TrackerWorkflow
	search       *services.SearchService
	engine       tasks.Engine
	width        int
	height       int
	bookList     list.Model
	trackerList  list.Model
	searchList   list.Model
	searchInput  textinput.Model
	searchHits   []models.BookSearchResult
	typing       bool
	status       string
	month        int
	year         int
	candidates   []models.UserBook
	progressChan chan tasks.ProgressUpdate
	bulkDone     chan bulkAddCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.BulkAddResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, session *store.SessionStore, library *store.LibraryStore, tracker *store.TrackerWorkflow, search *services.SearchService, engine tasks.Engine) *Model {
	month, year := store.CurrentMonth()

	input := textinput.New()
	input.Placeholder = "Title or author..."
	input.CharLimit = 120

	return &Model{
		ctx:         ctx,
		view:        LibraryView,
		session:     session,
		library:     library,
		tracker:     tracker,
		search:      search,
		engine:      engine,
		month:       month,
		year:        year,
		searchInput: input,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by refreshing the library.
func (m *Model) Init() tea.Cmd {
	return m.refreshLibrary()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.bookList.Width() == 0 {
			m.bookList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackerList.Width() == 0 {
			m.trackerList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.searchList.Width() == 0 {
			m.searchList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case TrackerView:
			return m.handleTrackerKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case libraryRefreshedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.rebuildBookList()
		return m, nil

	case trackerLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = LibraryView
			return m, nil
		}
		m.rebuildTrackerList()
		m.view = TrackerView
		return m, nil

	case bookCompletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rebuildTrackerList()
		return m, nil

	case shelfMovedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.rebuildBookList()
		return m, nil

	case searchResultsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.typing = true
			return m, nil
		}
		m.err = nil
		m.searchHits = msg.results
		m.typing = false
		m.rebuildSearchList()
		return m, nil

	case searchAddedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Added %q to your library", msg.title)
		m.rebuildSearchList()
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case bulkAddCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		m.bulkDone = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && (m.view == ConfirmView || m.view == AddView) {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LibraryView:
		return m.renderLibrary()
	case SearchView:
		return m.renderSearch()
	case TrackerView:
		return m.renderTracker()
	case ConfirmView:
		return m.renderConfirm()
	case AddView:
		return m.renderAdd()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		return m, m.loadTracker(m.month, m.year)
	case "/":
		m.err = nil
		m.status = ""
		m.searchHits = nil
		m.typing = true
		m.searchInput.SetValue("")
		m.view = SearchView
		return m, m.searchInput.Focus()
	case "w":
		return m, m.moveShelf(models.ShelfWantToRead)
	case "s":
		return m, m.moveShelf(models.ShelfCurrentlyReading)
	case "d":
		return m, m.moveShelf(models.ShelfRead)
	}

	var cmd tea.Cmd
	m.bookList, cmd = m.bookList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.typing {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.err = nil
			m.view = LibraryView
			return m, nil
		case "enter":
			query := m.searchInput.Value()
			if query == "" {
				return m, nil
			}
			m.status = "Searching..."
			return m, m.runSearch(query)
		}

		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.err = nil
		m.view = LibraryView
		return m, m.refreshLibrary()
	case "/":
		m.typing = true
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()
	case "a", "enter":
		selected := m.searchList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		if item, ok := selected.(searchItem); ok {
			if item.inLibrary {
				m.err = fmt.Errorf("%q is already in your library", item.hit.Title)
				return m, nil
			}
			m.status = fmt.Sprintf("Adding %q...", item.hit.Title)
			return m, m.addFromSearch(item.hit)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchList, cmd = m.searchList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.err = nil
		m.view = LibraryView
		return m, nil
	case "left", "h":
		month, year := store.PrevMonth(m.month, m.year)
		return m, m.loadTracker(month, year)
	case "right", "l":
		month, year := store.NextMonth(m.month, m.year)
		return m, m.loadTracker(month, year)
	case "a":
		if m.tracker.State() != store.TrackerActive {
			m.err = fmt.Errorf("no tracker for %s %d", models.MonthDisplay(m.month), m.year)
			return m, nil
		}
		m.candidates = m.tracker.CandidateBooks(m.library.Books())
		if len(m.candidates) == 0 {
			m.err = fmt.Errorf("no eligible books to add")
			return m, nil
		}
		m.err = nil
		m.view = ConfirmView
		return m, nil
	case "c":
		selected := m.trackerList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(trackerBookItem); ok {
				return m, m.completeBook(item.entry.ID)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackerList, cmd = m.trackerList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = TrackerView
		return m, nil
	case "y":
		m.view = AddView
		return m, m.startBulkAdd()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = LibraryView
		m.candidates = nil
		m.result = nil
		m.err = nil
		return m, m.refreshLibrary()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LibraryView:
		m.bookList, cmd = m.bookList.Update(msg)
	case SearchView:
		if m.typing {
			m.searchInput, cmd = m.searchInput.Update(msg)
		} else {
			m.searchList, cmd = m.searchList.Update(msg)
		}
	case TrackerView:
		m.trackerList, cmd = m.trackerList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildBookList() {
	books := m.library.Books()
	items := make([]list.Item, len(books))
	for i, book := range books {
		items[i] = bookItem{book: book}
	}
	m.bookList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.bookList.Title = "Library"
	if user := m.session.Current(); user != nil {
		m.bookList.Title = fmt.Sprintf("%s's Library", user.DisplayName())
	}
	m.bookList.SetSize(m.width-4, m.height-8)
}

func (m *Model) rebuildTrackerList() {
	books := m.tracker.Books()
	items := make([]list.Item, len(books))
	for i, entry := range books {
		items[i] = trackerBookItem{entry: entry}
	}
	m.trackerList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.trackerList.Title = fmt.Sprintf("%s %d", models.MonthDisplay(m.month), m.year)
	m.trackerList.SetSize(m.width-4, m.height-8)
}

func (m *Model) rebuildSearchList() {
	items := make([]list.Item, len(m.searchHits))
	for i, hit := range m.searchHits {
		items[i] = searchItem{hit: hit, inLibrary: m.library.InLibrary(hit.OpenLibraryID)}
	}
	m.searchList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.searchList.Title = fmt.Sprintf("Results for %q", m.searchInput.Value())
	m.searchList.SetSize(m.width-4, m.height-8)
}

func (m *Model) refreshLibrary() tea.Cmd {
	return func() tea.Msg {
		return libraryRefreshedMsg{err: m.library.Refresh(m.ctx)}
	}
}

func (m *Model) loadTracker(month, year int) tea.Cmd {
	return func() tea.Msg {
		user := m.session.Current()
		if user == nil {
			return trackerLoadedMsg{err: fmt.Errorf("not signed in")}
		}
		if err := m.tracker.LoadForMonth(m.ctx, user.ID, month, year); err != nil {
			return trackerLoadedMsg{err: err}
		}
		m.month, m.year = month, year
		return trackerLoadedMsg{}
	}
}

func (m *Model) moveShelf(shelf models.Shelf) tea.Cmd {
	selected := m.bookList.SelectedItem()
	if selected == nil {
		return nil
	}
	item, ok := selected.(bookItem)
	if !ok || item.book.Shelf == shelf {
		return nil
	}

	return func() tea.Msg {
		_, err := m.library.UpdateShelf(m.ctx, item.book.ID, shelf)
		return shelfMovedMsg{err: err}
	}
}

func (m *Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.search.Search(m.ctx, query, 1, 0)
		if err != nil {
			return searchResultsMsg{err: err}
		}
		return searchResultsMsg{results: resp.Books}
	}
}

func (m *Model) addFromSearch(hit models.BookSearchResult) tea.Cmd {
	return func() tea.Msg {
		_, err := m.library.AddFromSearch(m.ctx, models.AddBookFromSearchRequest{
			Title:         hit.Title,
			Author:        hit.Author,
			OpenLibraryID: hit.OpenLibraryID,
			CoverURL:      hit.CoverURL,
		})
		return searchAddedMsg{title: hit.Title, err: err}
	}
}

func (m *Model) completeBook(trackerBookID int64) tea.Cmd {
	return func() tea.Msg {
		return bookCompletedMsg{err: m.tracker.ToggleCompletion(m.ctx, trackerBookID)}
	}
}

func (m *Model) startBulkAdd() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	tracker := m.tracker.Tracker()
	candidates := m.candidates
	progress := m.progressChan

	done := make(chan bulkAddCompleteMsg, 1)
	go func() {
		result, err := m.engine.BulkAdd(m.ctx, progress, tracker.ID, candidates, tasks.BulkAddOpts{})
		done <- bulkAddCompleteMsg{result: result, err: err}
		close(progress)
	}()
	m.bulkDone = done

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return <-m.bulkDone
		}

		update, ok := <-m.progressChan
		if !ok {
			return <-m.bulkDone
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderLibrary() string {
	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(m.err.Error())
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.want, m.keys.started, m.keys.done, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", m.bookList.View(), errLine, helpView)
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Search the catalog")

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(m.err.Error())
	}
	var statusLine string
	if m.status != "" {
		statusLine = "\n" + styles.ok.Render(m.status)
	}

	if m.typing {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s%s%s\n\n%s", title, m.searchInput.View(), statusLine, errLine, helpView)
	}

	helpKeys := []key.Binding{m.keys.add, m.keys.search, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s%s\n\n%s", m.searchList.View(), statusLine, errLine, helpView)
}

func (m *Model) renderTracker() string {
	header := m.trackerList.View()

	var status string
	if m.tracker.State() == store.NoTracker {
		status = styles.warn.Render(fmt.Sprintf("No tracker for %s %d", models.MonthDisplay(m.month), m.year))
	} else if progress := m.tracker.Progress(); progress != nil {
		status = fmt.Sprintf("Goal: %d/%d books (%.0f%%)", progress.CompletedBooks, progress.TargetBooks, progress.CompletionPercentage)
	}

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(m.err.Error())
	}

	helpKeys := []key.Binding{m.keys.left, m.keys.right, m.keys.add, m.keys.complete, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", header, status, errLine, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Add %d books to %s %d?", len(m.candidates), models.MonthDisplay(m.month), m.year))

	var info string
	for _, book := range m.candidates {
		info += fmt.Sprintf("  • %s - %s\n", book.Book.Author, book.Book.Title)
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderAdd() string {
	title := styles.title.Render("Adding Books")

	var phase string
	switch m.progress.Phase {
	case tasks.BulkSubmit:
		phase = "Submitting books..."
	case tasks.AddBook:
		phase = fmt.Sprintf("Adding books (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Add failed: %v\n\nPress r to restart, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to restart, q to quit")
	}

	title := styles.ok.Render("✓ Books Added!")
	info := fmt.Sprintf(
		"\nTracker: %s %d\nAdded: %d/%d",
		models.MonthDisplay(m.month),
		m.year,
		m.result.SuccessCount,
		m.result.Requested,
	)

	var failed string
	if m.result.FailedCount > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Skipped %d books:", m.result.FailedCount)))
		for _, r := range m.result.Results {
			if r.Error != nil {
				failed += fmt.Sprintf("\n  • %s - %s", r.Book.Book.Author, r.Book.Book.Title)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
