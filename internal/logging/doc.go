// Package logging wraps zerolog behind a small Logger interface so the
// orchestrator, the workers and the metrics server can emit structured
// entries without depending on zerolog directly.
package logging
