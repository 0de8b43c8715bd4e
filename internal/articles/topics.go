package articles

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/aeroleads/internal/types"
)

// DefaultTopics is used when no topics are given.
var DefaultTopics = []string{
	"Loops",
	"Recursion",
	"Closures",
	"Error handling",
	"Pointers and references",
	"Hash maps",
	"Unit testing",
	"Concurrency basics",
	"Big O notation",
	"Regular expressions",
}

// topicsFile is the YAML layout of a --topics-file.
//
//	prompt_template: "Write about {{.Topic}}"   # optional, applies to every topic
//	topics:
//	  - loops
//	  - topic: closures
//	    source_url: https://go.dev/tour/moretypes/25
type topicsFile struct {
	PromptTemplate string       `yaml:"prompt_template"`
	Topics         []topicEntry `yaml:"topics"`
}

type topicEntry struct {
	Topic          string `yaml:"topic"`
	SourceURL      string `yaml:"source_url"`
	PromptTemplate string `yaml:"prompt_template"`
}

// UnmarshalYAML accepts either a bare string or a mapping.
func (t *topicEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Topic = node.Value
		return nil
	}
	type plain topicEntry
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = topicEntry(p)
	return nil
}

// LoadTopics reads topic specs from a YAML file (.yaml/.yml) or a plain text
// file with one topic per line. Blank lines and '#' comments are ignored.
func LoadTopics(path string) ([]types.ArticleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TopicsError{Path: path, Message: "failed to read file", Cause: err}
	}

	var specs []types.ArticleSpec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		specs, err = parseYAMLTopics(data)
	default:
		specs, err = parseTextTopics(data)
	}
	if err != nil {
		return nil, &TopicsError{Path: path, Message: "failed to parse topics", Cause: err}
	}
	if len(specs) == 0 {
		return nil, &TopicsError{Path: path, Message: "no topics found"}
	}
	return specs, nil
}

func parseYAMLTopics(data []byte) ([]types.ArticleSpec, error) {
	var file topicsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	specs := make([]types.ArticleSpec, 0, len(file.Topics))
	for i, entry := range file.Topics {
		topic := strings.TrimSpace(entry.Topic)
		if topic == "" {
			return nil, fmt.Errorf("topic %d is empty", i+1)
		}
		tmpl := entry.PromptTemplate
		if tmpl == "" {
			tmpl = file.PromptTemplate
		}
		specs = append(specs, types.ArticleSpec{
			Topic:          topic,
			PromptTemplate: tmpl,
			SourceURL:      strings.TrimSpace(entry.SourceURL),
		})
	}
	return specs, nil
}

func parseTextTopics(data []byte) ([]types.ArticleSpec, error) {
	var specs []types.ArticleSpec
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, types.ArticleSpec{Topic: line})
	}
	return specs, scanner.Err()
}

// SpecsFromTopics wraps plain topic strings, dropping blanks.
func SpecsFromTopics(topics []string) []types.ArticleSpec {
	specs := make([]types.ArticleSpec, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			specs = append(specs, types.ArticleSpec{Topic: t})
		}
	}
	return specs
}

// SelectTopics returns the first count specs. count must be positive.
func SelectTopics(specs []types.ArticleSpec, count int) ([]types.ArticleSpec, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be a positive integer, got %d", count)
	}
	if count < len(specs) {
		return specs[:count], nil
	}
	return specs, nil
}
