package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/teknify/internal/logger"
	"github.com/kelsos/teknify/internal/models"
)

// UploadMonitor shows batch progress in a terminal UI. It satisfies
// orchestrator.Observer.
type UploadMonitor struct {
	logPath string
	program *tea.Program
}

func NewUploadMonitor(logPath string) *UploadMonitor {
	return &UploadMonitor{logPath: logPath}
}

func (um *UploadMonitor) Start(opts ...tea.ProgramOption) {
	model := NewModel(um.logPath)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(os.Stderr)}, opts...)
	um.program = tea.NewProgram(model, opts...)
}

func (um *UploadMonitor) Stop() {
	if um.program != nil {
		um.program.Send(BatchFinished{})
	}
}

func (um *UploadMonitor) Started(req models.UploadRequest) {
	if um.program != nil {
		um.program.Send(FileStarted{Request: req})
	}
}

func (um *UploadMonitor) Completed(outcome models.TaskOutcome) {
	if um.program != nil {
		um.program.Send(FileCompleted{Outcome: outcome})
	}
}

// Run shows the UI while batch executes and returns the batch outcomes.
// Quitting the UI early does not cancel uploads; Run still waits for them.
func (um *UploadMonitor) Run(files []string, batch func() []models.TaskOutcome) ([]models.TaskOutcome, error) {
	if um.program == nil {
		um.Start()
	}

	done := make(chan []models.TaskOutcome, 1)
	go func() {
		um.program.Send(FilesQueued{Files: files})
		outcomes := batch()
		logger.Info("Batch of %d files finished", len(outcomes))
		// Signal completion
		um.Stop()
		done <- outcomes
	}()

	// Run the TUI (blocks until quit)
	_, err := um.program.Run()
	outcomes := <-done
	if err != nil {
		return outcomes, fmt.Errorf("failed to run TUI: %w", err)
	}

	return outcomes, nil
}
