// Package logging provides structured, subsystem-tagged logging for terrainforge
// services, built on log/slog.
//
// Log messages are tagged with a subsystem identifier (e.g. "orchestrator",
// "jobstore", "validator") so operators can filter by component. Audit is a
// thin wrapper used for job-lifecycle events that warrant a stable,
// grep-friendly key=value line.
package logging
