// Package component defines the lifecycle interface shared by long-lived
// fetchkit parts, such as an HTTP client that watches its config file, and
// a registry that starts them in order and stops them in reverse.
package component
