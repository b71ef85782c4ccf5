package task

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kelsos/teknify/internal/client"
	"github.com/kelsos/teknify/internal/logger"
	"github.com/kelsos/teknify/internal/models"
	"github.com/kelsos/teknify/internal/reply"
)

// Run uploads one file and classifies the result. It always returns exactly
// one outcome for req, including when the uploader panics.
func Run(ctx context.Context, uploader client.Uploader, req models.UploadRequest, mode models.OutputMode) (outcome models.TaskOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Upload of %s panicked: %v", req.Path, r)
			outcome = models.TransportError(req, fmt.Sprintf("upload aborted: %v", r))
		}
	}()

	resp, err := uploader.Upload(ctx, req.Path)
	if err != nil {
		return models.TransportError(req, err.Error())
	}
	if resp == nil {
		return models.TransportError(req, "no response received")
	}

	if !isSuccessStatus(resp.StatusCode) {
		logger.Debug("Upload of %s returned status %d: %s", req.Path, resp.StatusCode, resp.Body)
		return models.ApplicationError(req, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	result, err := reply.Interpret(resp.Body, req.Path, mode)
	if err != nil {
		return models.ApplicationError(req, err.Error())
	}

	return models.Success(req, result.Display, result.URL)
}

func isSuccessStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
