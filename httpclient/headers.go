package httpclient

import (
	"fmt"
	"net/http"
	"net/textproto"

	"golang.org/x/net/http/httpguts"
)

// Headers is a case-insensitive header multimap. Keys are stored in
// canonical MIME form, so "x-a" and "X-A" address the same entry.
type Headers map[string][]string

// NewHeaders builds Headers from alternating key-value pairs.
// A trailing key without a value is ignored.
func NewHeaders(kv ...string) Headers {
	h := make(Headers, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		h.Add(kv[i], kv[i+1])
	}
	return h
}

// Get returns the first value for key, or "" if absent.
func (h Headers) Get(key string) string {
	if v := h[textproto.CanonicalMIMEHeaderKey(key)]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns all values for key.
func (h Headers) Values(key string) []string {
	return h[textproto.CanonicalMIMEHeaderKey(key)]
}

// Has reports whether key is present.
func (h Headers) Has(key string) bool {
	_, ok := h[textproto.CanonicalMIMEHeaderKey(key)]
	return ok
}

// Set replaces any values for key with value.
func (h Headers) Set(key, value string) {
	h[textproto.CanonicalMIMEHeaderKey(key)] = []string{value}
}

// Add appends value to key.
func (h Headers) Add(key, value string) {
	k := textproto.CanonicalMIMEHeaderKey(key)
	h[k] = append(h[k], value)
}

// Del removes key.
func (h Headers) Del(key string) {
	delete(h, textproto.CanonicalMIMEHeaderKey(key))
}

// Clone returns a deep copy. Cloning nil yields an empty, writable map.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Merge overlays other onto h key by key. Keys present in other replace
// the values in h; other keys are kept.
func (h Headers) Merge(other Headers) {
	for k, v := range other {
		h[textproto.CanonicalMIMEHeaderKey(k)] = append([]string(nil), v...)
	}
}

// Validate rejects header names and values that cannot be sent on the wire.
func (h Headers) Validate() error {
	for k, vs := range h {
		if !httpguts.ValidHeaderFieldName(k) {
			return fmt.Errorf("httpclient: invalid header name %q", k)
		}
		for _, v := range vs {
			if !httpguts.ValidHeaderFieldValue(v) {
				return fmt.Errorf("httpclient: invalid value for header %q", k)
			}
		}
	}
	return nil
}

// HTTP converts h into an http.Header.
func (h Headers) HTTP() http.Header {
	return http.Header(h.Clone())
}

// canonical returns a copy of h with every key in canonical form. Used on
// maps that were filled without going through the accessor methods, such
// as decoded configuration.
func (h Headers) canonical() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		ck := textproto.CanonicalMIMEHeaderKey(k)
		out[ck] = append(out[ck], v...)
	}
	return out
}

func headersFromHTTP(h http.Header) Headers {
	return Headers(h.Clone())
}
