// Package shell binds the backend supervisor to the application window.
//
// App is the single lifecycle object: it owns the window handle and the
// backend handle and drives them through a small state machine:
//
//	uninitialized → scheme_registered → backend_starting → window_open → closed
//
// Toolkit specifics sit behind the Platform and Window interfaces so the
// lifecycle can be exercised with fakes. The window always opens, even when
// the backend fails to spawn, and closing it hard-stops the backend before
// the platform is asked to quit. There is no reopen path.
//
// App also serves a small host bridge under /__shell/ next to the bundled
// UI assets, exposing lifecycle state, dependency health and recent journal
// entries. Live events go out over a WebSocket Stream on a loopback
// listener, since the webview's asset server cannot upgrade connections;
// /__shell/status carries its URL.
package shell
