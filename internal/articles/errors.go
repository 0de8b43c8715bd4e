// Package articles generates one Markdown article per topic with a text-generation model.
package articles

import "fmt"

// GenerationError represents a topic that produced no article.
type GenerationError struct {
	Topic   string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("article %q: %s: %v", e.Topic, e.Message, e.Cause)
	}
	return fmt.Sprintf("article %q: %s", e.Topic, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// TopicsError represents an unreadable or malformed topics file.
type TopicsError struct {
	Path    string
	Message string
	Cause   error
}

func (e *TopicsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("topics file %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("topics file %s: %s", e.Path, e.Message)
}

func (e *TopicsError) Unwrap() error {
	return e.Cause
}
