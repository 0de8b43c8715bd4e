package dialer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/aeroleads/internal/schemas"
)

// InputError represents an unreadable or malformed number list.
type InputError struct {
	Path    string
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("call list %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("call list %s: %s", e.Path, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// CallList is the dispatcher input: ordered numbers plus an optional spoken message.
type CallList struct {
	Numbers []string `json:"numbers"`
	Message string   `json:"message,omitempty"`
}

// ReadCallList loads numbers from a file. Files ending in .json must match the
// call_list schema (an array of strings or {"numbers": [...], "message": "..."});
// anything else is read as plain text with one number per line.
// Entries are kept verbatim so invalid numbers surface as per-call failures.
func ReadCallList(path string) (*CallList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Message: "failed to read file", Cause: err}
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSONCallList(path, data)
	}
	return parseTextCallList(path, data)
}

func parseJSONCallList(path string, data []byte) (*CallList, error) {
	if !json.Valid(data) {
		return nil, &InputError{Path: path, Message: "invalid JSON"}
	}
	if err := schemas.Validate(schemas.CallList, data); err != nil {
		return nil, &InputError{Path: path, Message: "does not match call list schema", Cause: err}
	}

	trimmed := bytes.TrimSpace(data)
	list := &CallList{}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list.Numbers); err != nil {
			return nil, &InputError{Path: path, Message: "failed to decode numbers", Cause: err}
		}
		return list, nil
	}
	if err := json.Unmarshal(trimmed, list); err != nil {
		return nil, &InputError{Path: path, Message: "failed to decode call list", Cause: err}
	}
	return list, nil
}

func parseTextCallList(path string, data []byte) (*CallList, error) {
	list := &CallList{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list.Numbers = append(list.Numbers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &InputError{Path: path, Message: "failed to read lines", Cause: err}
	}
	return list, nil
}

// WriteResults saves call results as indented JSON.
func WriteResults(path string, results any) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write results to %s: %w", path, err)
	}
	return nil
}
