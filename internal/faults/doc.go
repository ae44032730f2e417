// Package faults defines the error taxonomy shared by the studio packages.
//
// # Kinds
//
// Every failure that crosses a package boundary carries exactly one kind:
//
//   - ErrStorage: Durable Store I/O failure (save, delete, list)
//   - ErrResolution: a registry id could not be resolved to a payload
//   - ErrGeneration: the generation collaborator failed or was rate limited
//   - ErrValidation: input rejected before any mutation was attempted
//   - ErrInvariant: an operation would break a structural invariant
//     (for example undo below the base render)
//
// # Matching
//
// *Error unwraps to both its kind and its cause, so callers can match either:
//
//	if errors.Is(err, faults.ErrStorage) { ... }
//	if errors.Is(err, store.ErrNotFound) { ... }
//
// Nothing in this module retries automatically. A failure is terminal for the
// attempt that produced it and is reported upward with its cause intact.
package faults
