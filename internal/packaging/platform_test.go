package packaging

import (
	"errors"
	"testing"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		value   string
		want    []string
		wantErr bool
	}{
		{"win", []string{"win"}, false},
		{"mac", []string{"mac"}, false},
		{"all", []string{"win", "mac"}, false},
		{"", []string{"win", "mac"}, false},
		{"WIN", []string{"win"}, false},
		{"linux", nil, true},
		{"windows", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			targets, err := ParsePlatform(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPlatform) {
					t.Errorf("ParsePlatform() error = %v, want ErrUnknownPlatform", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlatform() error = %v", err)
			}
			if len(targets) != len(tt.want) {
				t.Fatalf("got %d targets, want %d", len(targets), len(tt.want))
			}
			for i, name := range tt.want {
				if targets[i].Name != name {
					t.Errorf("target %d = %q, want %q", i, targets[i].Name, name)
				}
			}
		})
	}
}

func TestTargets(t *testing.T) {
	if !TargetWindows.NSIS || TargetWindows.Platform != "windows/amd64" {
		t.Errorf("TargetWindows = %+v", TargetWindows)
	}
	if TargetMac.NSIS || TargetMac.Platform != "darwin/universal" {
		t.Errorf("TargetMac = %+v", TargetMac)
	}
}
