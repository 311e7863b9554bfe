//go:build darwin

package desktop

// macOS apps stay alive in the dock after their last window closes.
const keepAliveWithoutWindows = true
