package views

import (
	"github.com/fatih/structs"
)

// Fields renders v as a map keyed by json names, keeping only the requested
// top level fields. No names keeps every field.
func Fields(v interface{}, names ...string) map[string]interface{} {
	s := structs.New(v)
	s.TagName = "json"
	m := s.Map()

	if len(names) == 0 {
		return m
	}

	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		if value, ok := m[name]; ok {
			out[name] = value
		}
	}

	return out
}
