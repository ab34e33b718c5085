package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	ReviewView
	ConfirmView
	ImportView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	view   ViewState
	engine *tasks.ImportEngine
	source string
	data   []byte
	opts   tasks.ImportOpts
	table  *tasks.Table

	width  int
	height int
	review list.Model
	bar    progress.Model
	help   help.Model
	keys   keyMap

	progressChan chan tasks.ProgressUpdate
	doneChan     chan importDoneMsg
	progress     tasks.ProgressUpdate
	preview      *models.ImportResult
	result       *models.ImportResult
	imported     bool
	err          error
}

// NewModel creates a TUI that reviews a dry run of data before importing it.
// When opts.DryRun is set the model stops after the review.
func NewModel(ctx context.Context, engine *tasks.ImportEngine, source string, data []byte, opts tasks.ImportOpts) *Model {
	return &Model{
		ctx:    ctx,
		view:   LoadingView,
		engine: engine,
		source: source,
		data:   data,
		opts:   opts,
		bar:    progress.New(progress.WithDefaultGradient()),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Result returns the outcome of the real import. Imported is false when the user quit before importing.
func (m *Model) Result() (result *models.ImportResult, imported bool, err error) {
	if m.opts.DryRun {
		return m.preview, false, m.err
	}
	return m.result, m.imported, m.err
}

// Init starts the dry run shown in the review list.
func (m *Model) Init() tea.Cmd {
	return m.runPreview()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ReviewView {
			m.review.SetSize(msg.Width-4, msg.Height-8)
		}
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		case ReviewView:
			return m.handleReviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ImportView:
			if key.Matches(msg, m.keys.abort) && m.cancel != nil {
				m.cancel()
			}
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case previewDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.table = msg.table
		m.preview = msg.result
		if m.opts.DryRun {
			m.view = ResultView
			return m, nil
		}
		m.review = list.New(outcomeItems(msg.result), list.NewDefaultDelegate(), 0, 0)
		m.review.Title = fmt.Sprintf("Dry run of %s", m.source)
		if m.width > 0 {
			m.review.SetSize(m.width-4, m.height-8)
		}
		m.view = ReviewView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case importDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.imported = msg.err == nil
		m.view = ResultView
		m.progressChan, m.doneChan = nil, nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m, nil
	}

	if m.view == ReviewView {
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case ReviewView:
		return m.renderReview()
	case ConfirmView:
		return m.renderConfirm()
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.review.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.proceed):
			m.view = ConfirmView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.view = ReviewView
		return m, nil
	case key.Matches(msg, m.keys.confirm):
		m.view = ImportView
		return m, m.startImport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.review):
		if m.opts.DryRun || m.table == nil {
			return m, nil
		}
		m.view = LoadingView
		m.err = nil
		return m, m.runPreview()
	}
	return m, nil
}

// runPreview decodes the file once and dry-runs every row against the current directory.
func (m *Model) runPreview() tea.Cmd {
	ctx, engine, table, data, opts := m.ctx, m.engine, m.table, m.data, m.opts
	opts.DryRun = true

	return func() tea.Msg {
		if table == nil {
			var err error
			if table, err = tasks.DecodeTable(data); err != nil {
				return previewDoneMsg{err: err}
			}
		}
		result, err := engine.ImportTable(ctx, nil, table, opts)
		return previewDoneMsg{table: table, result: result, err: err}
	}
}

func (m *Model) startImport() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	progressChan := make(chan tasks.ProgressUpdate, 50)
	doneChan := make(chan importDoneMsg, 1)
	m.cancel, m.progressChan, m.doneChan = cancel, progressChan, doneChan
	m.progress = tasks.ProgressUpdate{}

	engine, table, opts := m.engine, m.table, m.opts
	opts.DryRun = false
	go func() {
		result, err := engine.ImportTable(ctx, progressChan, table, opts)
		doneChan <- importDoneMsg{result: result, err: err}
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, doneChan := m.progressChan, m.doneChan
	return func() tea.Msg {
		if update, ok := <-progressChan; ok {
			return progressUpdateMsg(update)
		}
		return <-doneChan
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render(fmt.Sprintf("Reviewing %s", m.source))
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.muted.Render("Running a dry run..."), m.help.ShortHelpView(m.keys.forView(LoadingView, m.opts.DryRun)))
}

func (m *Model) renderReview() string {
	return fmt.Sprintf("%s\n\n%s", m.review.View(), m.help.ShortHelpView(m.keys.forView(ReviewView, false)))
}

func (m *Model) renderConfirm() string {
	p := m.preview
	title := styles.title.Render(fmt.Sprintf("Import %s?", m.source))
	info := fmt.Sprintf(
		"\nRows: %d\nNew founders: %d\nUpdated founders: %d\nSkipped: %d\nErrors: %d\nExisting emails: %s\n",
		p.Processed, p.Created, p.Updated, p.Skipped, p.Errors, dedupeLabel(m.opts.Mode),
	)

	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(m.keys.forView(ConfirmView, false)))
}

func (m *Model) renderImport() string {
	title := styles.title.Render("Importing founders")

	var phase string
	switch m.progress.Phase {
	case tasks.ReconcileRows:
		phase = fmt.Sprintf("Reconciling rows (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Summarize:
		phase = "Summarizing..."
	default:
		phase = "Starting..."
	}

	var percent float64
	if m.progress.Total > 0 {
		percent = float64(m.progress.Step) / float64(m.progress.Total)
	}
	return fmt.Sprintf("%s\n\n%s\n%s\n%s\n\n%s", title, m.bar.ViewAs(percent), phase,
		styles.muted.Render(m.progress.Message), m.help.ShortHelpView(m.keys.forView(ImportView, false)))
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Import failed: %v\n\nPress q to quit", m.err))
	}

	result := m.result
	if m.opts.DryRun {
		result = m.preview
	}
	if result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	return fmt.Sprintf("%s\n\n%s", RenderSummary(result, m.source, 10), m.help.ShortHelpView(m.keys.forView(ResultView, m.opts.DryRun)))
}

func dedupeLabel(mode tasks.DedupeMode) string {
	if mode == tasks.DedupeSkip {
		return "skip"
	}
	return "update"
}
