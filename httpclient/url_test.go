package httpclient

import "testing"

func TestQuery_Encode(t *testing.T) {
	tests := []struct {
		name string
		q    *Query
		want string
	}{
		{"absent", nil, ""},
		{"empty object", QueryValues(), ""},
		{"insertion order", QueryValues("a", "1", "b", "2"), "?a=1&b=2"},
		{"order kept when keys unsorted", QueryValues("z", "1", "a", "2"), "?z=1&a=2"},
		{"form encoding", QueryValues("q", "a b&c", "k=", "x/y"), "?q=a+b%26c&k%3D=x%2Fy"},
		{"repeated key", QueryValues("a", "1", "a", "2"), "?a=1&a=2"},
		{"raw without prefix", RawQuery("a=1"), "?a=1"},
		{"raw with prefix", RawQuery("?a=1"), "?a=1"},
		{"raw empty", RawQuery(""), ""},
		{"raw lone question mark", RawQuery("?"), ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.q.Encode(); got != tc.want {
				t.Errorf("Encode() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestQuery_AddConvertsRaw(t *testing.T) {
	q := RawQuery("x=1")
	q.Add("a", "1")
	if q.IsRaw() {
		t.Error("expected ordered query after Add")
	}
	if got := q.Encode(); got != "?a=1" {
		t.Errorf("Encode() = %q, want ?a=1", got)
	}
	if q.Get("a") != "1" || q.Len() != 1 {
		t.Errorf("unexpected query state: %q len=%d", q.Get("a"), q.Len())
	}
}

func TestQuery_CloneIsIndependent(t *testing.T) {
	q := QueryValues("a", "1")
	c := q.Clone()
	c.Add("b", "2")
	if q.Len() != 1 {
		t.Errorf("original modified by clone: len=%d", q.Len())
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"none", nil, ""},
		{"single verbatim", []string{"a/b c"}, "a/b c"},
		{"multiple", []string{"a", "b"}, "a/b"},
		{"multiple escaped", []string{"users", "a/b", "x y"}, "users/a%2Fb/x%20y"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := JoinPath(tc.segments); got != tc.want {
				t.Errorf("JoinPath(%v) = %q, want %q", tc.segments, got, tc.want)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		segments []string
		query    *Query
		want     string
	}{
		{"segments", "http://x.test", []string{"a", "b"}, nil, "http://x.test/a/b"},
		{"trailing slash base", "http://x.test/", []string{"a/"}, nil, "http://x.test/a/"},
		{"leading slash path", "http://x.test", []string{"/p"}, nil, "http://x.test/p"},
		{"interior duplicates", "http://x.test//api/", []string{"//v1//users"}, nil, "http://x.test/api/v1/users"},
		{"scheme kept", "https://x.test", []string{"a"}, nil, "https://x.test/a"},
		{"empty base", "", []string{"p"}, nil, "p"},
		{"empty path", "http://x.test/", nil, nil, "http://x.test"},
		{"absolute path bypasses base", "http://x.test", []string{"https://other.test/z"}, nil, "https://other.test/z"},
		{"query appended", "http://h", []string{"p"}, QueryValues("a", "1"), "http://h/p?a=1"},
		{"query slashes untouched", "http://h", []string{"p"}, RawQuery("next=//x"), "http://h/p?next=//x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildURL(tc.base, tc.segments, tc.query); got != tc.want {
				t.Errorf("BuildURL() = %q, want %q", got, tc.want)
			}
		})
	}
}
