package types

// ArticleSpec is one topic to generate an article for.
type ArticleSpec struct {
	Topic          string `json:"topic" yaml:"topic"`
	PromptTemplate string `json:"prompt_template,omitempty" yaml:"prompt_template,omitempty"`
	SourceURL      string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
}

// ArticleOutput is the generated article for one ArticleSpec.
type ArticleOutput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Path  string `json:"path,omitempty"` // File the article was written to
}
