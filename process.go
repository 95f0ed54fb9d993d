package i8n

import (
	"context"
	"strings"
)

// TextNode represents a translatable unit of content.
type TextNode struct {
	ID       string            // Unique identifier within the document
	Text     string            // Original text content (trimmed)
	NodeType string            // Content type: "html_text", etc.
	Metadata map[string]string // Additional info (parent tag, etc.)
}

// ContentProcessor is the interface for content processing.
type ContentProcessor interface {
	Extract(content string) (any, []TextNode, error)
	Apply(parsed any, nodes []TextNode, translations map[string]string) (string, error)
	ContentType() string
}

// ProcessedContent is the result of translating a document.
type ProcessedContent struct {
	Content         string // Translated content
	TranslatedCount int    // Nodes translated by the backend
	CachedCount     int    // Nodes served from cache
	FallbackCount   int    // Nodes left untranslated
	TotalNodes      int    // Total translatable nodes found
}

// Process translates every text node of content. All nodes share the
// request options (tag, plural, language, user type). Backend failures leave
// the affected nodes untranslated; only processing errors are returned.
func (t *Translator) Process(ctx context.Context, content string, contentType string, opts ...RequestOption) (*ProcessedContent, error) {
	processor, ok := t.config().processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return &ProcessedContent{Content: content}, nil
	}

	reqs := make([]TranslationRequest, len(nodes))
	for i, node := range nodes {
		reqs[i] = NewRequest(node.Text, opts...)
	}

	out := &ProcessedContent{TotalNodes: len(nodes)}
	translations := make(map[string]string, len(nodes))
	for i, res := range t.LookupAll(ctx, reqs) {
		translations[nodes[i].Text] = res.Text
		switch res.Source {
		case SourceCache:
			out.CachedCount++
		case SourceBackend:
			out.TranslatedCount++
		default:
			out.FallbackCount++
		}
	}

	result, err := processor.Apply(parsed, nodes, translations)
	if err != nil {
		return nil, err
	}
	out.Content = result

	return out, nil
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Translator) ProcessHTML(ctx context.Context, html string, opts ...RequestOption) (*ProcessedContent, error) {
	return t.Process(ctx, html, "html", opts...)
}

// TranslateHTML returns html with every text node translated.
func (t *Translator) TranslateHTML(ctx context.Context, html string, opts ...RequestOption) (string, error) {
	if strings.TrimSpace(html) == "" {
		return html, nil
	}
	res, err := t.ProcessHTML(ctx, html, opts...)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}
