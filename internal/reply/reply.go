// Package reply turns the body returned by the upload endpoint into the text
// shown to the user.
//
// For the parsed output modes the body must look like
//
//	{"result": {"url": "<string>", ...}, ...}
//
// and every way it can fail to is reported with its own error.
package reply

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kelsos/teknify/internal/models"
)

var (
	ErrInvalidJSON     = errors.New("failed to parse JSON reply")
	ErrNotObject       = errors.New("JSON reply is not an object")
	ErrMissingResult   = errors.New(`JSON reply has no "result" field`)
	ErrResultNotObject = errors.New(`"result" field of JSON reply is not an object`)
	ErrMissingURL      = errors.New(`"result" object of JSON reply has no "url" field`)
	ErrURLNotString    = errors.New(`"url" field of JSON reply is not a string`)
)

// Result is a successfully interpreted reply
type Result struct {
	Display string
	// URL is empty in JSON mode, where the body is not inspected
	URL string
}

// Interpret extracts the display text for the file at path from body.
// It performs no I/O.
func Interpret(body, path string, mode models.OutputMode) (Result, error) {
	if mode == models.OutputJSON {
		return Result{Display: body}, nil
	}

	url, err := ExtractURL(body)
	if err != nil {
		return Result{}, err
	}

	switch mode {
	case models.OutputURLOnly:
		return Result{Display: url, URL: url}, nil
	case models.OutputNameAndURL:
		return Result{Display: fmt.Sprintf("%s: %s", path, url), URL: url}, nil
	default:
		return Result{}, fmt.Errorf("unknown output mode: %v", mode)
	}
}

// ExtractURL pulls result.url out of a JSON reply
func ExtractURL(body string) (string, error) {
	root, err := decodeObject(body)
	if err != nil {
		return "", err
	}

	rawResult, ok := root["result"]
	if !ok {
		return "", ErrMissingResult
	}
	result, err := asObject(rawResult)
	if err != nil {
		return "", ErrResultNotObject
	}

	rawURL, ok := result["url"]
	if !ok {
		return "", ErrMissingURL
	}
	var url string
	if err := json.Unmarshal(rawURL, &url); err != nil || isNull(rawURL) {
		return "", ErrURLNotString
	}

	return url, nil
}

func decodeObject(body string) (map[string]json.RawMessage, error) {
	if !json.Valid([]byte(body)) {
		return nil, ErrInvalidJSON
	}
	obj, err := asObject(json.RawMessage(body))
	if err != nil {
		return nil, ErrNotObject
	}
	return obj, nil
}

// asObject decodes raw as a JSON object; null and non-objects are rejected
func asObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("not an object")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
