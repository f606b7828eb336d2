// Package logger provides structured logging backed by zerolog.
//
// A process-wide logger is configured once with Init; pipeline stages and
// HTTP handlers derive component loggers from it with WithComponent and
// attach job-scoped fields with WithJob.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("coordinator").WithJob(jobID)
//	log.Info("chunk transcribed", logger.Fields("chunk", 2, "segments", 14))
package logger
