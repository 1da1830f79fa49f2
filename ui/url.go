package ui

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// AdminURLBuilder provides a fluent interface for building admin panel URLs
type AdminURLBuilder struct {
	path   string
	params url.Values
}

// NewAdminURL creates a new URL builder for the resource list mounted under basePath
func NewAdminURL(basePath, resourceName string) *AdminURLBuilder {
	return &AdminURLBuilder{
		path:   strings.TrimRight(basePath, "/") + "/" + url.PathEscape(resourceName),
		params: make(url.Values),
	}
}

// PreserveFromRequest copies the user-facing query parameters of the current request
func (b *AdminURLBuilder) PreserveFromRequest(r *http.Request) *AdminURLBuilder {
	for k, v := range r.URL.Query() {
		if !isInternalParam(k) {
			b.params[k] = v
		}
	}
	return b
}

// WithSort sets sorting parameters
func (b *AdminURLBuilder) WithSort(field, direction string) *AdminURLBuilder {
	if field != "" {
		b.params.Set("sort", field)
		if direction != "" {
			b.params.Set("direction", direction)
		}
	}
	return b
}

// WithPagination sets pagination parameters
func (b *AdminURLBuilder) WithPagination(offset, limit int) *AdminURLBuilder {
	b.params.Set("offset", strconv.Itoa(offset))
	b.params.Set("limit", strconv.Itoa(limit))
	return b
}

// WithFilter adds a filter parameter
func (b *AdminURLBuilder) WithFilter(key, value string) *AdminURLBuilder {
	if key != "" && value != "" {
		b.params.Set(key, value)
	}
	return b
}

// WithParam sets an arbitrary parameter
func (b *AdminURLBuilder) WithParam(key, value string) *AdminURLBuilder {
	if key != "" {
		b.params.Set(key, value)
	}
	return b
}

// RemoveParam removes a parameter
func (b *AdminURLBuilder) RemoveParam(key string) *AdminURLBuilder {
	b.params.Del(key)
	return b
}

// String builds and returns the final URL
func (b *AdminURLBuilder) String() string {
	if len(b.params) == 0 {
		return b.path
	}
	return b.path + "?" + b.params.Encode()
}

// isInternalParam reports parameters that must not carry over into new URLs
func isInternalParam(key string) bool {
	internalParams := []string{
		"load_more",
		"partial",
	}

	for _, param := range internalParams {
		if strings.EqualFold(key, param) {
			return true
		}
	}
	return false
}

// currentURL returns the exact path and query a request was made to
func currentURL(r *http.Request) string {
	return r.URL.RequestURI()
}
