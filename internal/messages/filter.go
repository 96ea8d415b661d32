package messages

import "strings"

// Filter narrows a message list by type and a case-insensitive search over
// subject and sender. An empty or "all" type passes everything. The input
// slice is never mutated.
func Filter(list []*Message, searchTerm, typeFilter string) []*Message {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	typ := strings.ToLower(strings.TrimSpace(typeFilter))

	out := make([]*Message, 0, len(list))
	for _, m := range list {
		if typ != "" && typ != "all" && string(m.Type) != typ {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(m.Subject), term) &&
			!strings.Contains(strings.ToLower(m.From), term) {
			continue
		}
		out = append(out, m)
	}
	return out
}
