// Package process supervises the single long-running backend process the
// desktop shell depends on.
//
// Features:
//   - Spawn one child with a fixed command line and inherited stdio
//   - Exit monitoring with exit-code logging (no automatic restart)
//   - Idempotent hard kill of the whole process group / tree
//   - Optional background readiness probe against an HTTP endpoint
//   - Context-based cancellation for clean shutdown
//
// Example usage:
//
//	sup := process.NewSupervisor(process.Config{
//	    Name:   "backend",
//	    Binary: "python",
//	    Args:   []string{"-m", "open_webui.main"},
//	})
//	sup.SetLogger(logger)
//
//	if err := sup.Start(ctx); err != nil {
//	    logger.Error("failed to start backend", "error", err)
//	}
//	defer sup.Stop()
package process
