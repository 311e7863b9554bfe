// Package resource resolves the shell's custom URL scheme onto the bundled
// UI assets on disk.
//
// A request for app://<path> maps to <install-root>/build/<path>. Paths are
// percent-decoded once, normalised, and must stay inside the resource root
// both lexically and after symlink evaluation. Anything else is refused.
//
// Handler serves resolved files over HTTP for the window's asset server.
// Unresolvable or missing files are logged and answered with 403/404; there
// is no fallback page.
package resource
