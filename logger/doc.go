// Package logger provides structured logging for fetchkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("httpclient")
//	log.Info("call completed", logger.Fields("status", 200))
package logger
