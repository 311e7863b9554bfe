// Package journal persists shell lifecycle events to SQLite.
//
// Every event the shell emits (scheme registration, backend spawn and exit,
// window open and close) is appended to the lifecycle_events table. The
// host bridge reads recent events back for the UI, and old rows are pruned
// on startup according to the retention setting.
package journal
