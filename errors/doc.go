// Package errors provides structured error types for the bridge.
//
// Errors carry a Phase (where in the lifecycle the failure happened) and a
// Kind (what went wrong), plus the export or symbol name involved when one
// exists. Matching with errors.Is compares Phase and Kind, so callers can
// test for a category without string inspection:
//
//	if errors.Is(err, &bridgeerrors.Error{
//	    Phase: bridgeerrors.PhaseExports,
//	    Kind:  bridgeerrors.KindDuplicateExport,
//	}) {
//	    // duplicate export name, module load aborted
//	}
//
// Reclaim-phase conditions are never returned to the host; they are logged
// and the affected buffer is leaked. The constructors for those kinds exist
// for diagnostics only.
package errors
