package processor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/i8n"
	"golang.org/x/net/html"
)

// DefaultIgnoredTags lists elements whose content is never translated.
var DefaultIgnoredTags = []string{"script", "style", "code", "pre", "textarea", "noscript"}

// DefaultAttributes lists the attributes translated alongside text nodes.
var DefaultAttributes = []string{"title", "alt", "placeholder", "aria-label"}

const (
	// NodeTypeText marks a text node.
	NodeTypeText = "html_text"
	// NodeTypeAttribute marks a translatable attribute value.
	NodeTypeAttribute = "html_attr"

	noTranslateAttr = "data-no-translate"
)

// HTMLProcessor extracts and applies translations to HTML content.
type HTMLProcessor struct {
	ignoredTags map[string]bool
	attributes  map[string]bool
}

// HTMLOption configures an HTMLProcessor.
type HTMLOption func(*HTMLProcessor)

// WithIgnoredTags replaces the set of skipped elements.
func WithIgnoredTags(tags ...string) HTMLOption {
	return func(p *HTMLProcessor) {
		p.ignoredTags = toSet(tags)
	}
}

// WithAttributes replaces the set of translated attributes. No
// arguments disables attribute translation.
func WithAttributes(attrs ...string) HTMLOption {
	return func(p *HTMLProcessor) {
		p.attributes = toSet(attrs)
	}
}

// NewHTMLProcessor creates a new HTML processor.
func NewHTMLProcessor(opts ...HTMLOption) *HTMLProcessor {
	p := &HTMLProcessor{
		ignoredTags: toSet(DefaultIgnoredTags),
		attributes:  toSet(DefaultAttributes),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}

// Extract parses HTML and returns one node per distinct translatable text.
func (p *HTMLProcessor) Extract(content string) (any, []TextNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &i8n.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: p.ContentType(),
		}
	}

	var nodes []TextNode
	seen := make(map[string]bool)

	add := func(text, nodeType string, meta map[string]string) {
		if seen[text] {
			return
		}
		seen[text] = true
		meta["node_type"] = nodeType
		nodes = append(nodes, TextNode{
			ID:       fmt.Sprintf("node-%d", len(nodes)),
			Text:     text,
			NodeType: nodeType,
			Metadata: meta,
		})
	}

	for _, root := range doc.Nodes {
		p.walk(root, func(n *html.Node) {
			switch n.Type {
			case html.TextNode:
				if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
					meta := map[string]string{"context": describe(n)}
					if n.Parent != nil {
						meta["parent_tag"] = n.Parent.Data
					}
					add(trimmed, NodeTypeText, meta)
				}
			case html.ElementNode:
				for _, attr := range n.Attr {
					if !p.attributes[attr.Key] {
						continue
					}
					if trimmed := strings.TrimSpace(attr.Val); trimmed != "" {
						add(trimmed, NodeTypeAttribute, map[string]string{
							"parent_tag": n.Data,
							"attribute":  attr.Key,
						})
					}
				}
			}
		})
	}

	return doc, nodes, nil
}

// Apply rewrites every text node and attribute whose trimmed text has a
// translation. Surrounding whitespace is kept.
func (p *HTMLProcessor) Apply(parsed any, nodes []TextNode, translations map[string]string) (string, error) {
	doc, ok := parsed.(*goquery.Document)
	if !ok {
		return "", &i8n.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: p.ContentType(),
		}
	}

	for _, root := range doc.Nodes {
		p.walk(root, func(n *html.Node) {
			switch n.Type {
			case html.TextNode:
				if translated, ok := translations[strings.TrimSpace(n.Data)]; ok {
					n.Data = preserveWhitespace(n.Data, translated)
				}
			case html.ElementNode:
				for i, attr := range n.Attr {
					if !p.attributes[attr.Key] {
						continue
					}
					if translated, ok := translations[strings.TrimSpace(attr.Val)]; ok {
						n.Attr[i].Val = preserveWhitespace(attr.Val, translated)
					}
				}
			}
		})
	}

	out, err := doc.Html()
	if err != nil {
		return "", &i8n.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: p.ContentType(),
		}
	}
	return out, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// walk visits n and its descendants, skipping ignored elements and
// subtrees marked data-no-translate.
func (p *HTMLProcessor) walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		if p.ignoredTags[strings.ToLower(n.Data)] {
			return
		}
		for _, attr := range n.Attr {
			if attr.Key == noTranslateAttr {
				return
			}
		}
	}

	visit(n)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, visit)
	}
}

// describe returns a short location hint such as
// `in <button class="primary"> | inside: nav`.
func describe(n *html.Node) string {
	parent := n.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return ""
	}

	var parts []string
	if class := attrValue(parent, "class"); class != "" {
		parts = append(parts, fmt.Sprintf("in <%s class=%q>", parent.Data, class))
	} else if id := attrValue(parent, "id"); id != "" {
		parts = append(parts, fmt.Sprintf("in <%s id=%q>", parent.Data, id))
	} else {
		parts = append(parts, fmt.Sprintf("in <%s>", parent.Data))
	}

	var ancestors []string
	for a := parent.Parent; a != nil && len(ancestors) < 3; a = a.Parent {
		if a.Type == html.ElementNode && a.Data != "html" && a.Data != "body" {
			ancestors = append([]string{a.Data}, ancestors...)
		}
	}
	if len(ancestors) > 0 {
		parts = append(parts, "inside: "+strings.Join(ancestors, " > "))
	}

	return strings.Join(parts, " | ")
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	leading := original[:len(original)-len(strings.TrimLeft(original, " \t\n\r"))]
	trailing := original[len(strings.TrimRight(original, " \t\n\r")):]
	return leading + translated + trailing
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
