package chat

// History is the ordered turn sequence of a single session. It grows until
// cleared and is not safe for concurrent use.
type History struct {
	turns []Turn
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{turns: make([]Turn, 0, 16)}
}

// Append adds turns to the end of the sequence in the given order.
func (h *History) Append(turns ...Turn) {
	h.turns = append(h.turns, turns...)
}

// Clear drops every turn.
func (h *History) Clear() {
	h.turns = make([]Turn, 0, 16)
}

// Turns returns a copy of the sequence in insertion order.
func (h *History) Turns() []Turn {
	copied := make([]Turn, len(h.turns))
	copy(copied, h.turns)
	return copied
}

// Len reports the number of stored turns.
func (h *History) Len() int {
	return len(h.turns)
}
