package packaging

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// projectFields maps wails.json keys to metadata values.
func projectFields(m Metadata) []struct {
	key   string
	value string
} {
	return []struct {
		key   string
		value string
	}{
		{"name", m.Build.ProductName},
		{"outputfilename", m.Name},
		{"info.companyName", m.Author},
		{"info.productName", m.Build.ProductName},
		{"info.productVersion", m.Version},
		{"info.copyright", m.Build.Copyright},
		{"info.comments", m.Description},
	}
}

// SyncProjectFile writes metadata into the wails.json at path, leaving all
// other keys and their formatting alone. It returns the keys it changed;
// the file is not rewritten when nothing changed.
func SyncProjectFile(path string, m Metadata) ([]string, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing project file %s: invalid JSON", path)
	}

	var changed []string
	for _, f := range projectFields(m) {
		if gjson.GetBytes(data, f.key).String() == f.value {
			continue
		}
		data, err = sjson.SetBytes(data, f.key, f.value)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", f.key, err)
		}
		changed = append(changed, f.key)
	}

	if len(changed) == 0 {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("writing project file: %w", err)
	}
	return changed, nil
}
