//go:build !darwin

package desktop

const keepAliveWithoutWindows = false
