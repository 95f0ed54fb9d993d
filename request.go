package i8n

// TranslationRequest identifies a translation lookup.
// Zero values are the defaults: no tag, singular, backend default language
// and no user type.
type TranslationRequest struct {
	Sentence string // Source-language text
	Tag      string // Usage context; identical text may translate differently per tag
	Plural   bool   // Translate as plural
	Language string // Target language; empty lets the backend decide
	UserType string // Audience segment affecting terminology
}

// RequestOption sets an optional field of a TranslationRequest.
type RequestOption func(*TranslationRequest)

// WithTag sets the request tag.
func WithTag(tag string) RequestOption {
	return func(r *TranslationRequest) {
		r.Tag = tag
	}
}

// WithPlural marks the request as plural.
func WithPlural(plural bool) RequestOption {
	return func(r *TranslationRequest) {
		r.Plural = plural
	}
}

// WithLanguage sets the target language.
func WithLanguage(lang string) RequestOption {
	return func(r *TranslationRequest) {
		r.Language = lang
	}
}

// WithUserType sets the audience segment.
func WithUserType(userType string) RequestOption {
	return func(r *TranslationRequest) {
		r.UserType = userType
	}
}

// NewRequest builds a TranslationRequest for sentence.
func NewRequest(sentence string, opts ...RequestOption) TranslationRequest {
	req := TranslationRequest{Sentence: sentence}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
