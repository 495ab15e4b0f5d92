package security

import (
	"crypto/tls"
	"net/http"
	"testing"

	"github.com/kbukum/fetchkit/security/tlstest"
)

func TestTLSConfig_Build(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	badCA := tlstest.WriteInvalidPEM(t, "bad-ca.pem")

	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantNil bool
		wantErr bool
		check   func(t *testing.T, c *tls.Config)
	}{
		{name: "nil", cfg: nil, wantNil: true},
		{name: "zero value", cfg: &TLSConfig{}, wantNil: true},
		{
			name: "defaults to tls 1.2",
			cfg:  &TLSConfig{SkipVerify: true, ServerName: "api.test"},
			check: func(t *testing.T, c *tls.Config) {
				if !c.InsecureSkipVerify || c.ServerName != "api.test" || c.MinVersion != tls.VersionTLS12 {
					t.Errorf("unexpected config: skip=%v server=%q min=%x", c.InsecureSkipVerify, c.ServerName, c.MinVersion)
				}
			},
		},
		{
			name: "min_version string",
			cfg:  &TLSConfig{MinVersion: "1.3"},
			check: func(t *testing.T, c *tls.Config) {
				if c.MinVersion != tls.VersionTLS13 {
					t.Errorf("MinVersion = %x, want TLS13", c.MinVersion)
				}
			},
		},
		{name: "unsupported min_version", cfg: &TLSConfig{MinVersion: "1.1"}, wantErr: true},
		{name: "cert without key", cfg: &TLSConfig{CertFile: certs.CertFile}, wantErr: true},
		{name: "missing ca file", cfg: &TLSConfig{CAFile: "/nonexistent/ca.pem"}, wantErr: true},
		{name: "invalid ca content", cfg: &TLSConfig{CAFile: badCA}, wantErr: true},
		{
			name: "ca and client certificate",
			cfg:  &TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile},
			check: func(t *testing.T, c *tls.Config) {
				if c.RootCAs == nil || len(c.Certificates) != 1 {
					t.Errorf("expected root CAs and one client certificate, got %d certs", len(c.Certificates))
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Build()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (got == nil) != tt.wantNil {
				t.Fatalf("Build() = %v, wantNil %v", got, tt.wantNil)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantErr bool
	}{
		{"nil", nil, false},
		{"cert and key", &TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}, false},
		{"key only", &TLSConfig{KeyFile: "key.pem"}, true},
		{"min 1.2", &TLSConfig{MinVersion: "1.2"}, false},
		{"min tls13", &TLSConfig{MinVersion: "tls13"}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestTLSConfig_DialsTestServer(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	srv := tlstest.NewServer(t, certs, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), true)

	cfg := &TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile}
	tlsCfg, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET over mTLS failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	// Without the CA the server certificate is not trusted.
	plain := &http.Client{Transport: &http.Transport{}}
	if _, err := plain.Get(srv.URL); err == nil {
		t.Error("expected verification failure without the CA")
	}
}
