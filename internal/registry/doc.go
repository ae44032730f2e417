// Package registry assigns identities to generated assets, persists them in
// the Durable Store and resolves references back to payloads.
//
// # Identity
//
// Asset ids have the form asset_<kind>_<unixMillis>_<seq>. The sequence is a
// per-process counter, and an id that already exists in the store is skipped,
// so two registrations never share an id even within one millisecond or
// across restarts. Id issuance and the store write happen under one mutex.
//
// # Resolution
//
// Resolve returns the stored payload for a registry id and any other string
// unchanged, so callers can pass URLs and data URLs through the same path.
//
// # Working set and collection
//
// Every render is added to a bounded transient pool. Pool eviction only
// forgets the id; the payload stays in the store and stays resolvable.
// Payloads are deleted only by Optimize, which keeps everything reachable
// from registered Retainers and the pool. Without any retainer Optimize does
// nothing. WithGraceWindow additionally keeps recently created assets, which
// covers renders another process has registered but not yet recorded.
package registry
