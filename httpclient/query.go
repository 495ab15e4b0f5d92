package httpclient

import (
	"net/url"
	"strings"
)

type queryPair struct {
	key, value string
}

// Query is the query part of a request. It is either an ordered list of
// key-value pairs or a raw, already encoded string.
type Query struct {
	pairs []queryPair
	raw   string
	isRaw bool
}

// QueryValues builds an ordered query from alternating key-value pairs.
// Encoding preserves insertion order.
func QueryValues(kv ...string) *Query {
	q := &Query{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Add(kv[i], kv[i+1])
	}
	return q
}

// RawQuery wraps a pre-encoded query string. A leading "?" is optional.
func RawQuery(s string) *Query {
	return &Query{raw: s, isRaw: true}
}

// Add appends a key-value pair. Calling Add on a raw query converts it to
// an ordered query and drops the raw string.
func (q *Query) Add(key, value string) {
	if q.isRaw {
		q.isRaw = false
		q.raw = ""
	}
	q.pairs = append(q.pairs, queryPair{key: key, value: value})
}

// Get returns the first value for key.
func (q *Query) Get(key string) string {
	if q == nil {
		return ""
	}
	for _, p := range q.pairs {
		if p.key == key {
			return p.value
		}
	}
	return ""
}

// Len returns the number of pairs. Raw queries report zero.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.pairs)
}

// IsRaw reports whether q wraps a raw string.
func (q *Query) IsRaw() bool {
	return q != nil && q.isRaw
}

// Clone returns a deep copy.
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	return &Query{
		pairs: append([]queryPair(nil), q.pairs...),
		raw:   q.raw,
		isRaw: q.isRaw,
	}
}

// Encode serializes q for appending to a URL.
//
// An absent or empty query yields "". Pairs are form-encoded in insertion
// order behind a "?". A raw string is used verbatim with a "?" prefixed
// when it lacks one.
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	if q.isRaw {
		if q.raw == "" || q.raw == "?" {
			return ""
		}
		if strings.HasPrefix(q.raw, "?") {
			return q.raw
		}
		return "?" + q.raw
	}
	if len(q.pairs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteByte('?')
	for i, p := range q.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (q *Query) String() string {
	return q.Encode()
}
