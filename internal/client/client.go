package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kelsos/teknify/internal/config"
	"github.com/kelsos/teknify/internal/logger"
	"github.com/kelsos/teknify/internal/models"
)

// FileField is the multipart field name the endpoint expects the file under
const FileField = "file"

// Uploader sends a single file to the upload endpoint
type Uploader interface {
	Upload(ctx context.Context, path string) (*models.RawResponse, error)
}

// TransportError is returned for every failure that prevented a complete
// response from being read: opening the file, building or sending the
// request, or reading the body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UploadClient handles the HTTP communication with the upload endpoint
type UploadClient struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// NewUploadClient creates a new upload client with the given configuration
func NewUploadClient(cfg *config.Config) (*UploadClient, error) {
	transport, err := newTransport(cfg.ProxyAddr)
	if err != nil {
		return nil, err
	}

	return &UploadClient{
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}, nil
}

// Endpoint returns the URL files are posted to
func (c *UploadClient) Endpoint() string {
	return c.endpoint
}

// Upload posts the file at path as multipart/form-data and returns the status
// code together with the full response body. The request is sent at most once.
func (c *UploadClient) Upload(ctx context.Context, path string) (*models.RawResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &TransportError{Op: "open file", Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &TransportError{Op: "stat file", Err: err}
	}
	if info.IsDir() {
		return nil, &TransportError{Op: "open file", Err: fmt.Errorf("%s is a directory", path)}
	}

	contentType, err := detectContentType(file)
	if err != nil {
		return nil, &TransportError{Op: "read file", Err: err}
	}

	body, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(form, filepath.Base(path), contentType, file))
	}()
	// unblocks the writer goroutine if the request is abandoned before the body is drained
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	logger.Debug("Starting upload of %s (%d bytes, %s) to %s", path, info.Size(), contentType, c.endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("Upload of %s failed after %v: %v", path, time.Since(start), err)
		return nil, &TransportError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}

	logger.Debug("Upload of %s completed in %v with status %d", path, time.Since(start), resp.StatusCode)

	return &models.RawResponse{
		StatusCode: resp.StatusCode,
		Body:       string(reply),
	}, nil
}

// detectContentType sniffs the file header and rewinds the file afterwards
func detectContentType(file *os.File) (string, error) {
	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeForm(form *multipart.Writer, name, contentType string, content io.Reader) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return form.Close()
}

// IsTransportError reports whether err came from the transport layer
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
