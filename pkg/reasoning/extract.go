package reasoning

import "strings"

// Extract strips markers from line using the default registry.
func Extract(line string) string {
	return defaultRegistry.Extract(line)
}

// Extract returns the reasoning text carried by a single line. Paired formats
// are tried first, then the prefix; the first structural match wins and its
// content is returned trimmed. A line with no match is returned trimmed, so
// Extract is idempotent on marker-free input.
func (r *Registry) Extract(line string) string {
	for _, f := range r.paired {
		if m := f.pattern().FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	trimmed := strings.TrimSpace(line)
	if content, ok := r.cutPrefix(trimmed); ok {
		return strings.TrimSpace(content)
	}
	return trimmed
}
