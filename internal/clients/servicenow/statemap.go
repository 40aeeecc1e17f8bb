package servicenow

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StateMap translates symbolic ticket states ("in progress", "closed", ...)
// into ServiceNow incident state codes.
type StateMap map[string]string

func DefaultStateMap() StateMap {
	return StateMap{
		"in progress": "2",
		"cancelled":   "6",
		"closed":      "7",
	}
}

type stateMapFile struct {
	States map[string]string `yaml:"states"`
}

// LoadStateMap reads a YAML file of the form
//
//	states:
//	  in progress: "2"
//
// on top of the defaults. An empty or missing path yields the defaults.
func LoadStateMap(path string) (StateMap, error) {
	out := DefaultStateMap()
	path = strings.TrimSpace(path)
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("read state map: %w", err)
	}
	var f stateMapFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse state map: %w", err)
	}
	for k, v := range f.States {
		k = normalizeState(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Code returns the ITSM code for a symbolic state; unknown values pass
// through unchanged.
func (m StateMap) Code(state string) string {
	if code, ok := m[normalizeState(state)]; ok {
		return code
	}
	return state
}

// Translate returns a copy of fields with "state" mapped.
func (m StateMap) Translate(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	if s, ok := out["state"].(string); ok {
		out["state"] = m.Code(s)
	}
	return out
}

func normalizeState(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
