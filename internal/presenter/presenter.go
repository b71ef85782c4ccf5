package presenter

import (
	"fmt"
	"io"
	"sync"

	"github.com/kelsos/teknify/internal/models"
)

// Presenter renders outcomes: successes to out, errors and progress to errOut.
// Every line is emitted with a single Write call under a lock, so concurrent
// callers never interleave partial lines.
type Presenter struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	mu      sync.Mutex
}

// New creates a presenter writing to the given streams
func New(out, errOut io.Writer, verbose bool) *Presenter {
	return &Presenter{out: out, errOut: errOut, verbose: verbose}
}

// Header announces the batch size when verbose
func (p *Presenter) Header(concurrency int) {
	if p.verbose {
		p.writeLine(p.errOut, fmt.Sprintf("Concurrent uploads: %d", concurrency))
	}
}

// Started prints the progress line for req when verbose
func (p *Presenter) Started(req models.UploadRequest) {
	if p.verbose {
		p.writeLine(p.errOut, fmt.Sprintf("Uploading %s", req.Path))
	}
}

// Completed presents the outcome as soon as it is collected
func (p *Presenter) Completed(outcome models.TaskOutcome) {
	p.Present(outcome)
}

// Present writes a single outcome
func (p *Presenter) Present(outcome models.TaskOutcome) {
	if outcome.Kind == models.OutcomeSuccess {
		p.writeLine(p.out, outcome.Text)
		return
	}
	p.writeLine(p.errOut, fmt.Sprintf("Error processing %s: %s", outcome.Path, outcome.Text))
}

// Summary prints the batch totals when verbose
func (p *Presenter) Summary(s models.Summary) {
	if p.verbose {
		p.writeLine(p.errOut, fmt.Sprintf("Uploaded %d of %d files (%d application errors, %d transport errors)",
			s.Succeeded, s.Total, s.ApplicationErrors, s.TransportErrors))
	}
}

func (p *Presenter) writeLine(w io.Writer, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(w, line+"\n")
}
