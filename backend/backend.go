// Package backend provides translation backends for the i8n Translator.
package backend

import "github.com/ZaguanLabs/i8n"

// Backend is an alias to the main package interface.
type Backend = i8n.Backend

// RemoteClient is an alias to the main package interface.
type RemoteClient = i8n.RemoteClient

// TranslationRequest is an alias to the main package type.
type TranslationRequest = i8n.TranslationRequest
