package types

import (
	"errors"
	"net/url"
	"strings"
)

// ContentType classifies a source document by its URL.
type ContentType string

const (
	ContentTypePDF      ContentType = "pdf"
	ContentTypeDocument ContentType = "document"
	ContentTypeImage    ContentType = "image"
	ContentTypeWebpage  ContentType = "webpage"
	ContentTypeUnknown  ContentType = "unknown"
)

// Defaults applied when a provider result omits a field.
const (
	DefaultTitle   = "Untitled"
	DefaultContent = "No content available"
)

// ErrNonObjectResult is returned for a nil result, the normalized form of a
// results-array entry that was not a JSON object.
var ErrNonObjectResult = errors.New("result is not an object")

// Source is one normalized search result. Domain and ContentType are derived
// purely from the URL.
type Source struct {
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"type"`
	Domain      string      `json:"domain"`
}

// NewSource builds a Source from raw result fields, applying defaults and
// deriving the domain and content type from the URL.
func NewSource(title, rawURL, content string) Source {
	if title == "" {
		title = DefaultTitle
	}
	if content == "" {
		content = DefaultContent
	}
	return Source{
		Title:       title,
		URL:         rawURL,
		Content:     content,
		ContentType: InferContentType(rawURL),
		Domain:      ExtractDomain(rawURL),
	}
}

// SourceFromResult builds a Source from one raw provider result. Any object
// result normalizes, with defaults filling missing fields, so an empty object
// still becomes an "Untitled" source. Only nil results (non-object entries in
// the results array) yield ErrNonObjectResult so callers can skip them
// without aborting the batch.
func SourceFromResult(result map[string]any) (Source, error) {
	if result == nil {
		return Source{}, ErrNonObjectResult
	}
	return NewSource(
		stringField(result, "title"),
		stringField(result, "url"),
		stringField(result, "content"),
	), nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// InferContentType classifies a URL by extension heuristics. An empty URL is
// unknown; anything unrecognized is a webpage.
func InferContentType(rawURL string) ContentType {
	u := strings.ToLower(rawURL)
	switch {
	case u == "":
		return ContentTypeUnknown
	case strings.Contains(u, ".pdf"):
		return ContentTypePDF
	case strings.Contains(u, ".doc"), strings.Contains(u, ".docx"):
		return ContentTypeDocument
	case strings.Contains(u, ".jpg"), strings.Contains(u, ".png"), strings.Contains(u, ".gif"):
		return ContentTypeImage
	default:
		return ContentTypeWebpage
	}
}

// ExtractDomain parses the host out of a URL. Malformed URLs fall back to the
// original string rather than failing.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
