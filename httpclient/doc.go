// Package httpclient is an HTTP client built around an interceptor pipeline.
//
// Every call runs the same steps:
//
//  1. The request is completed with the client's default method and
//     headers.
//  2. Before interceptors run in registration order. Each receives its own
//     copy of the request and returns the request for the next stage.
//  3. The transport sends the request to base + path + query.
//  4. A non-2xx status is a failure. Otherwise after interceptors run in
//     order over the wrapped response.
//  5. Any failure becomes an *Error and is handed to the error
//     interceptors. The first one that returns a response recovers the
//     call; if none does, the call fails with the last error.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    Base: "https://api.example.com",
//	    HTTP: &httpclient.HTTPConfig{Timeout: 10 * time.Second},
//	})
//
//	client.AddBefore(httpclient.Before("auth", func(c *httpclient.Client, r *httpclient.Request) (*httpclient.Request, error) {
//	    r.SetHeader("Authorization", "Bearer "+token)
//	    return r, nil
//	}))
//
//	resp, err := client.Get(ctx, "users", httpclient.WithSegments("123"))
//
// # Recovery and Retry
//
// An error interceptor can re-run a call through Client.Schedule, which
// waits and then calls Do again. The interceptors package ships a retry
// interceptor built this way, along with logging, tracing, metrics, request
// id and user agent interceptors.
//
// Interceptors are expected to honor Request.Skip: a request that lists an
// interceptor's id asks that interceptor to leave it untouched.
package httpclient
