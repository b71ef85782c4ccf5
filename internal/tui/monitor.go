package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/teknify/internal/models"
)

type FileStage string

const (
	StagePending   FileStage = "pending"
	StageUploading FileStage = "uploading"
	StageDone      FileStage = "done"
	StageFailed    FileStage = "failed"
)

type FileStatus struct {
	Path          string
	Stage         FileStage
	Message       string
	StartTime     time.Time
	CompletedTime time.Time
}

type Model struct {
	files        []*FileStatus
	logs         []string
	spinner      spinner.Model
	progress     progress.Model
	width        int
	height       int
	quit         bool
	finished     bool
	errorCount   int
	successCount int
	activeCount  int
	logPath      string
}

// FilesQueued lists the batch in input order
type FilesQueued struct {
	Files []string
}

type FileStarted struct {
	Request models.UploadRequest
}

type FileCompleted struct {
	Outcome models.TaskOutcome
}

// BatchFinished is sent once every outcome was collected
type BatchFinished struct{}

func NewModel(logPath string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	pr := progress.New(progress.WithDefaultGradient())

	return Model{
		files:    []*FileStatus{},
		logs:     []string{},
		spinner:  sp,
		progress: pr,
		width:    80,
		height:   24,
		logPath:  logPath,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKeyMsg(msg) {
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m = m.handleWindowSizeMsg(msg)

	case FilesQueued:
		m = m.handleFilesQueued(msg)

	case FileStarted:
		m = m.handleFileStarted(msg)

	case FileCompleted:
		m = m.handleFileCompleted(msg)

	case BatchFinished:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		if progressModel, ok := progressModel.(progress.Model); ok {
			m.progress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

func (m Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.progress.Width = max(msg.Width-40, 10)
	return m
}

func (m Model) handleFilesQueued(msg FilesQueued) Model {
	m.files = make([]*FileStatus, len(msg.Files))
	for i, path := range msg.Files {
		m.files[i] = &FileStatus{Path: path, Stage: StagePending}
	}
	return m
}

func (m Model) status(sequenceID int) *FileStatus {
	if sequenceID < 0 || sequenceID >= len(m.files) {
		return nil
	}
	return m.files[sequenceID]
}

func (m Model) handleFileStarted(msg FileStarted) Model {
	if status := m.status(msg.Request.SequenceID); status != nil {
		status.Stage = StageUploading
		status.StartTime = time.Now()
		m.activeCount++
	}
	m = m.appendLog(fmt.Sprintf("Uploading %s", msg.Request.Path))
	return m
}

func (m Model) handleFileCompleted(msg FileCompleted) Model {
	outcome := msg.Outcome
	if status := m.status(outcome.SequenceID); status != nil {
		if status.Stage == StageUploading {
			m.activeCount--
		}
		status.CompletedTime = time.Now()
		status.Message = outcome.Text
		if outcome.Failed() {
			status.Stage = StageFailed
		} else {
			status.Stage = StageDone
		}
	}

	if outcome.Failed() {
		m.errorCount++
		m = m.appendLog(fmt.Sprintf("❌ %s: %s", outcome.Path, outcome.Text))
	} else {
		m.successCount++
		m = m.appendLog(fmt.Sprintf("✅ %s", outcome.Path))
	}
	return m
}

func (m Model) appendLog(message string) Model {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s",
		time.Now().Format("15:04:05"), message))
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
	return m
}

// Completed returns the number of files that reached a terminal stage
func (m Model) Completed() int {
	return m.successCount + m.errorCount
}

// Fraction is the share of completed files, 1 for an empty batch
func (m Model) Fraction() float64 {
	if len(m.files) == 0 {
		return 1
	}
	return float64(m.Completed()) / float64(len(m.files))
}

func (m Model) View() string {
	if m.quit {
		return "Waiting for running uploads to finish...\n"
	}
	if m.finished {
		return ""
	}

	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render("⬆ Teknify Uploads"))
	s.WriteString("\n\n")

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	summary := fmt.Sprintf("Files: %d | ✅ Success: %d | ❌ Errors: %d | ⏳ Active: %d",
		len(m.files), m.successCount, m.errorCount, m.activeCount)
	s.WriteString(summaryStyle.Render(summary))
	s.WriteString("\n")
	s.WriteString(m.progress.ViewAs(m.Fraction()))
	s.WriteString("\n\n")

	fileSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(max(m.width-2, 20))

	var fileList strings.Builder
	fileList.WriteString("📊 Files\n")
	fileList.WriteString(strings.Repeat("─", 60) + "\n")

	for _, status := range m.visibleFiles() {
		line := fmt.Sprintf("%s %-30s %-10s",
			getStageIcon(status.Stage, m.spinner.View()),
			truncate(filepath.Base(status.Path), 30),
			status.Stage)

		if status.Message != "" {
			messageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
			if status.Stage == StageFailed {
				messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
			}
			line += " " + messageStyle.Render(truncate(status.Message, 60))
		}

		stageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(getStageColor(status.Stage)))
		fileList.WriteString(stageStyle.Render(line) + "\n")
	}

	s.WriteString(fileSectionStyle.Render(fileList.String()))
	s.WriteString("\n\n")

	logSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(max(m.width-2, 20)).
		Height(8)

	var logSection strings.Builder
	logSection.WriteString("📝 Recent Events\n")
	for _, log := range m.logs {
		logSection.WriteString(log + "\n")
	}

	s.WriteString(logSectionStyle.Render(logSection.String()))
	s.WriteString("\n\n")

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	footer := "Press 'q' to hide progress"
	if m.logPath != "" {
		footer += " | Logs: " + m.logPath
	}
	s.WriteString(footerStyle.Render(footer))

	return s.String()
}

// visibleFiles keeps the list within the terminal, preferring unfinished files
func (m Model) visibleFiles() []*FileStatus {
	limit := max(m.height-22, 5)
	if len(m.files) <= limit {
		return m.files
	}

	visible := make([]*FileStatus, 0, limit)
	for _, status := range m.files {
		if status.Stage == StageUploading || status.Stage == StageFailed {
			visible = append(visible, status)
		}
	}
	for _, status := range m.files {
		if status.Stage == StagePending {
			visible = append(visible, status)
		}
	}
	if len(visible) > limit {
		visible = visible[:limit]
	}
	return visible
}

func getStageIcon(stage FileStage, spin string) string {
	switch stage {
	case StagePending:
		return "⏸"
	case StageUploading:
		return spin
	case StageDone:
		return "✅"
	case StageFailed:
		return "❌"
	default:
		return "❓"
	}
}

func getStageColor(stage FileStage) string {
	switch stage {
	case StagePending:
		return "244"
	case StageDone:
		return "82"
	case StageFailed:
		return "196"
	default:
		return "39"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
