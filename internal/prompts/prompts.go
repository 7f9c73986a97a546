// Package prompts holds the built-in prompt templates for the query
// pipeline. Templates use fmt verbs; see the driven.Prompt* constants for
// the placeholders each one expects.
package prompts

import (
	"embed"
	"strings"
)

//go:embed defaults/*.txt
var defaultsFS embed.FS

// Default returns the built-in template for a prompt name.
func Default(name string) (string, bool) {
	data, err := defaultsFS.ReadFile("defaults/" + name + ".txt")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// Defaults returns every built-in template keyed by name.
func Defaults() map[string]string {
	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".txt")
		if text, ok := Default(name); ok {
			out[name] = text
		}
	}
	return out
}
