// Package processor provides content processors that let a Translator
// translate whole documents node by node.
package processor

import "github.com/ZaguanLabs/i8n"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = i8n.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = i8n.TextNode
