// Package services implements the business logic layer between the HTTP
// handlers and the collector/renderer pipeline.
//
// Services follow interface-driven design for testability, propagate
// context for cancellation, and receive their dependencies and logger by
// injection. The ReportService orchestrates the two-stage pipeline (one
// collection pass, one rendering pass, strictly sequential); the
// HealthService reports process health and upstream readiness.
package services
