package i8n

import "github.com/sirupsen/logrus"

// EventKind classifies a degraded lookup.
type EventKind string

const (
	// KindBackendUnavailable is logged when no backend is configured.
	KindBackendUnavailable EventKind = "backend_unavailable"
	// KindBackendCallFailure is logged when the backend call fails or times out.
	KindBackendCallFailure EventKind = "backend_call_failure"
	// KindCacheWriteFailure is logged when a translated value cannot be cached.
	KindCacheWriteFailure EventKind = "cache_write_failure"
)

var eventMessages = map[EventKind]string{
	KindBackendUnavailable: "translator not initialized, returning sentence without treatment",
	KindBackendCallFailure: "translation request to backend failed, returning original sentence",
	KindCacheWriteFailure:  "translation could not be cached",
}

// warn emits a structured warning for a degraded lookup.
func (t *Translator) warn(cfg *translatorConfig, req TranslationRequest, key string, kind EventKind, err error) {
	entry := cfg.logger.WithFields(logrus.Fields{
		"kind":      string(kind),
		"backend":   cfg.backend.Kind().String(),
		"cache_key": key,
		"tag":       req.Tag,
		"plural":    req.Plural,
		"language":  req.Language,
		"user_type": req.UserType,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(eventMessages[kind])
}
