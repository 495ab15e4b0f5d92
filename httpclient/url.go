package httpclient

import (
	"net/url"
	"strings"
)

// JoinPath joins request path segments. A single segment is used as is,
// so it may carry its own slashes. With several segments each one is
// percent-encoded before joining with "/".
func JoinPath(segments []string) string {
	switch len(segments) {
	case 0:
		return ""
	case 1:
		return segments[0]
	}
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

// BuildURL resolves the full URL for a call. Absolute http(s) paths bypass
// base. Otherwise base is trimmed of surrounding slashes, joined to the
// path with one slash, and duplicate slashes after the scheme are
// collapsed. The encoded query is appended last.
func BuildURL(base string, segments []string, q *Query) string {
	p := JoinPath(segments)

	var u string
	switch {
	case isAbsolute(p):
		u = p
	case base == "":
		u = p
	case p == "":
		u = strings.Trim(base, "/")
	default:
		u = strings.Trim(base, "/") + "/" + strings.TrimLeft(p, "/")
	}

	return collapseSlashes(u) + q.Encode()
}

func isAbsolute(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// collapseSlashes squeezes runs of "/" into one, leaving the "//" that
// follows a scheme untouched.
func collapseSlashes(u string) string {
	prefix := ""
	if i := strings.Index(u, "://"); i >= 0 {
		prefix, u = u[:i+3], u[i+3:]
	}
	if !strings.Contains(u, "//") {
		return prefix + u
	}

	var b strings.Builder
	b.Grow(len(prefix) + len(u))
	b.WriteString(prefix)
	prevSlash := false
	for i := 0; i < len(u); i++ {
		c := u[i]
		if c == '/' && prevSlash {
			continue
		}
		prevSlash = c == '/'
		b.WriteByte(c)
	}
	return b.String()
}
