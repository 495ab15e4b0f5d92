package interceptors

import (
	"github.com/google/uuid"

	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/version"
)

// HeaderRequestID is the default request id header.
const HeaderRequestID = "X-Request-Id"

// RequestID sets a random UUID in header, or X-Request-Id if header is
// empty. A request that already carries the header keeps it, so retries
// reuse the id of the first attempt.
func RequestID(header string) *httpclient.BeforeInterceptor {
	if header == "" {
		header = HeaderRequestID
	}
	return httpclient.Before(IDRequestID, func(_ *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
		if r.Skips(IDRequestID) || r.Headers.Has(header) {
			return r, nil
		}
		r.SetHeader(header, uuid.New().String())
		return r, nil
	})
}

// UserAgent sets the User-Agent header unless the request already has one.
// An empty value means version.UserAgent().
func UserAgent(value string) *httpclient.BeforeInterceptor {
	if value == "" {
		value = version.UserAgent()
	}
	return httpclient.Before(IDUserAgent, func(_ *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
		if r.Skips(IDUserAgent) || r.Headers.Has("User-Agent") {
			return r, nil
		}
		r.SetHeader("User-Agent", value)
		return r, nil
	})
}
