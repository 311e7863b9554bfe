// Package desktop runs the shell on a native webview through Wails.
//
// Wails owns the event loop and exactly one window. The custom resource
// scheme is served through the Wails asset server: requests for
// app://<path> arrive at the registered handler as /<path>, and the root
// document is rewritten to the window's start URL.
//
// On macOS closing the window hides it and tells the shell the window is
// gone; the app stays in the dock until the user quits. Everywhere else
// closing the window ends the event loop.
package desktop
