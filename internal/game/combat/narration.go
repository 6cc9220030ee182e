package combat

// Narration is the battle's line log. With a positive capacity it keeps only
// the most recent lines.
type Narration struct {
	capacity int
	lines    []string
	start    int
	total    int
}

// NewNarration returns a log; capacity <= 0 means unbounded.
func NewNarration(capacity int) *Narration {
	if capacity < 0 {
		capacity = 0
	}
	return &Narration{capacity: capacity}
}

// Append adds a line.
func (n *Narration) Append(line string) {
	n.total++
	if n.capacity == 0 || len(n.lines) < n.capacity {
		n.lines = append(n.lines, line)
		return
	}
	n.lines[n.start] = line
	n.start = (n.start + 1) % n.capacity
}

// Lines returns the retained lines, oldest first.
func (n *Narration) Lines() []string {
	out := make([]string, 0, len(n.lines))
	out = append(out, n.lines[n.start:]...)
	out = append(out, n.lines[:n.start]...)
	return out
}

// Total returns the number of lines ever appended.
func (n *Narration) Total() int {
	return n.total
}
