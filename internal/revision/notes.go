package revision

import "strings"

// Notes is an immutable list of revision notes. Append returns a new list
// and never touches the receiver, so a round's notes stay as they were sent.
type Notes struct {
	items []string
}

// NewNotes copies items into a note list, dropping blank entries
func NewNotes(items ...string) Notes {
	return Notes{}.Append(items...)
}

// Append returns a copy of n with items added
func (n Notes) Append(items ...string) Notes {
	out := make([]string, 0, len(n.items)+len(items))
	out = append(out, n.items...)
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return Notes{items: out}
}

// Concat returns a copy of n followed by other
func (n Notes) Concat(other Notes) Notes {
	return n.Append(other.items...)
}

// Items returns a copy of the notes, nil when empty
func (n Notes) Items() []string {
	if len(n.items) == 0 {
		return nil
	}
	return append([]string(nil), n.items...)
}

func (n Notes) Len() int {
	return len(n.items)
}

func (n Notes) Empty() bool {
	return len(n.items) == 0
}
