// Package packaging builds the desktop installers and prepares the bundled
// Python environment they ship with.
//
// The build surface selects targets from a --platform value (win, mac or
// all), runs the Wails toolchain once per target and stops at the first
// failure. Installer metadata lives in a YAML file and is synchronised into
// wails.json before building.
//
// Prepare recreates python/venv, installs the backend and its requirements
// into it, and refreshes the installer icons. Every step must succeed.
package packaging
