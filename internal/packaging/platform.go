package packaging

import (
	"fmt"
	"strings"
)

// Target is one installer to build.
type Target struct {
	// Name is the --platform spelling, "win" or "mac".
	Name string

	// Platform is the Wails GOOS/GOARCH pair.
	Platform string

	// NSIS requests a Windows NSIS installer.
	NSIS bool
}

var (
	// TargetWindows builds the Windows NSIS installer.
	TargetWindows = Target{Name: "win", Platform: "windows/amd64", NSIS: true}

	// TargetMac builds the macOS universal app bundle.
	TargetMac = Target{Name: "mac", Platform: "darwin/universal"}
)

// ParsePlatform maps a --platform value to targets. An empty value means
// all. Windows is always built before macOS.
func ParsePlatform(value string) ([]Target, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "win":
		return []Target{TargetWindows}, nil
	case "mac":
		return []Target{TargetMac}, nil
	case "", "all":
		return []Target{TargetWindows, TargetMac}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want win, mac or all)", ErrUnknownPlatform, value)
	}
}
