package models

import "fmt"

// OutputMode selects how a successful reply is rendered
type OutputMode int

const (
	// OutputNameAndURL prints "<file>: <url>"
	OutputNameAndURL OutputMode = iota
	// OutputJSON prints the raw reply body
	OutputJSON
	// OutputURLOnly prints just the url
	OutputURLOnly
)

func (m OutputMode) String() string {
	switch m {
	case OutputNameAndURL:
		return "name-and-url"
	case OutputJSON:
		return "json"
	case OutputURLOnly:
		return "url"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the known modes
func (m OutputMode) Valid() bool {
	return m == OutputNameAndURL || m == OutputJSON || m == OutputURLOnly
}

// UploadRequest is one file queued for upload. SequenceID is its position in
// the input list.
type UploadRequest struct {
	Path       string
	SequenceID int
}

// RawResponse is the unprocessed answer of the upload endpoint
type RawResponse struct {
	StatusCode int
	Body       string
}

// OutcomeKind classifies how a task ended
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeApplicationError OutcomeKind = "application-error"
	OutcomeTransportError   OutcomeKind = "transport-error"
)

// TaskOutcome is the terminal result of uploading a single file.
// Text holds the display text on success and the error message otherwise.
type TaskOutcome struct {
	Path       string
	SequenceID int
	Kind       OutcomeKind
	Text       string
	// URL is set on success when the reply was parsed
	URL string
}

// Failed reports whether the outcome is an application or transport error
func (o TaskOutcome) Failed() bool {
	return o.Kind != OutcomeSuccess
}

// Success builds a successful outcome
func Success(req UploadRequest, display, url string) TaskOutcome {
	return TaskOutcome{Path: req.Path, SequenceID: req.SequenceID, Kind: OutcomeSuccess, Text: display, URL: url}
}

// ApplicationError builds an outcome for an unexpected reply
func ApplicationError(req UploadRequest, message string) TaskOutcome {
	return TaskOutcome{Path: req.Path, SequenceID: req.SequenceID, Kind: OutcomeApplicationError, Text: message}
}

// TransportError builds an outcome for a failed request
func TransportError(req UploadRequest, message string) TaskOutcome {
	return TaskOutcome{Path: req.Path, SequenceID: req.SequenceID, Kind: OutcomeTransportError, Text: message}
}
