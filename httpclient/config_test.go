package httpclient

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/fetchkit/security"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{
		Base:    "/http://api.test/v1/",
		Method:  "post",
		Headers: Headers{"x-team": {"core"}},
		HTTP:    &HTTPConfig{},
	}
	cfg.ApplyDefaults()

	if cfg.Base != "http://api.test/v1" {
		t.Errorf("Base = %q", cfg.Base)
	}
	if cfg.Method != "POST" {
		t.Errorf("Method = %q, want POST", cfg.Method)
	}
	if cfg.Headers.Get("X-Team") != "core" {
		t.Errorf("headers not canonical: %v", cfg.Headers)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.HTTP.Timeout)
	}

	var empty Config
	empty.ApplyDefaults()
	if empty.Method != "GET" {
		t.Errorf("default method = %q, want GET", empty.Method)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Base: "http://x", Method: "GET"}, ""},
		{"lowercase method", Config{Method: "get"}, "method"},
		{"long name", Config{Name: strings.Repeat("n", 65)}, "name"},
		{"bad header", Config{Headers: Headers{"Bad Name": {"v"}}}, "Bad Name"},
		{"negative timeout", Config{HTTP: &HTTPConfig{Timeout: -time.Second}}, "timeout"},
		{"half mtls", Config{HTTP: &HTTPConfig{TLS: &security.TLSConfig{CertFile: "c.pem"}}}, "key_file"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q should mention %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestConfigPatch_Apply(t *testing.T) {
	keep := Before("keep", func(_ *Client, r *Request) (*Request, error) { return r, nil })
	swap := Before("swap", func(_ *Client, r *Request) (*Request, error) { return r, nil })

	cfg := Config{
		Base:    "http://old",
		Method:  "GET",
		Headers: NewHeaders("X-A", "1", "X-B", "2"),
		Interceptors: Interceptors{
			Before: []*BeforeInterceptor{keep},
		},
	}

	base, method := "/http://new/", "delete"
	ConfigPatch{
		Base:    &base,
		Method:  &method,
		Headers: NewHeaders("X-B", "3", "X-C", "4"),
		Before:  []*BeforeInterceptor{swap},
	}.apply(&cfg)

	if cfg.Base != "http://new" || cfg.Method != "DELETE" {
		t.Errorf("unexpected base/method %q %q", cfg.Base, cfg.Method)
	}
	if cfg.Headers.Get("X-A") != "1" || cfg.Headers.Get("X-B") != "3" || cfg.Headers.Get("X-C") != "4" {
		t.Errorf("headers not overlaid: %v", cfg.Headers)
	}
	if len(cfg.Interceptors.Before) != 1 || cfg.Interceptors.Before[0] != swap {
		t.Errorf("before chain should be replaced, got %v", cfg.Interceptors.Before)
	}

	// An empty patch changes nothing.
	before := cfg.clone()
	ConfigPatch{}.apply(&cfg)
	if cfg.Base != before.Base || len(cfg.Interceptors.Before) != 1 || cfg.Headers.Get("X-B") != "3" {
		t.Errorf("empty patch changed config: %+v", cfg)
	}

	// An empty, non-nil list clears the chain.
	ConfigPatch{Before: []*BeforeInterceptor{}}.apply(&cfg)
	if len(cfg.Interceptors.Before) != 0 {
		t.Errorf("expected cleared chain, got %d", len(cfg.Interceptors.Before))
	}
}

func TestConfig_CloneIsIndependent(t *testing.T) {
	cfg := Config{Headers: NewHeaders("X-A", "1")}
	cp := cfg.clone()
	cp.Headers.Set("X-A", "2")
	cp.Interceptors.Before = append(cp.Interceptors.Before, Before("x", nil))

	if cfg.Headers.Get("X-A") != "1" || len(cfg.Interceptors.Before) != 0 {
		t.Errorf("clone shares state with original: %+v", cfg)
	}
}
