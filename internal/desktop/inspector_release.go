//go:build !debug && !dev

package desktop

// Release builds ignore Debug.OpenInspectorOnStartup; build with
// `webui-packager build --debug` to get the inspector.
const inspectorBuild = false
