//go:build debug || dev

package desktop

// Debug and dev builds honour Debug.OpenInspectorOnStartup.
const inspectorBuild = true
