// Package studio runs one fitting session: a base render, the garments
// layered onto it, and the history of renders those steps produced.
//
// # Admission
//
// Every mutating operation claims the session busy flag first. A second
// mutation while one is in flight is rejected with ErrBusy rather than
// queued.
//
// # Commit discipline
//
// Generation steps resolve their inputs, call the collaborator, and register
// the result before touching session state. Layers, history and the current
// render are then updated together. Any failure before that point leaves the
// session exactly as it was.
//
// # Retention
//
// A Session registers itself with the asset registry as a retainer for its
// base, history and layered garments, and registers a second retainer for
// everything the library references. Optimize only collects assets neither
// retainer names.
//
// The live asset set is also saved to the library as a session record before
// each step commits. The library retainer includes every record, so another
// process sharing the library keeps this session's renders until Close or
// StartOver drops the record.
package studio
