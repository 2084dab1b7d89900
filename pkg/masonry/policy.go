package masonry

// Policy chooses the column for the next item of a pass.
//
// Column is called once per item, in index order, with the current height
// cursor of every column. It should return a value in [0, len(cursors));
// the engine places items with an out-of-range column in round-robin order.
type Policy interface {
	Column(index int, cursors []float64) int
	String() string
}

// RoundRobin assigns items to columns in strict cyclic order (0, 1, ...,
// N-1, 0, 1, ...) regardless of how tall each column has grown. It is the
// default policy and item i always lands in column i mod N.
type RoundRobin struct{}

// Column returns index mod len(cursors).
func (RoundRobin) Column(index int, cursors []float64) int { return index % len(cursors) }

func (RoundRobin) String() string { return "round-robin" }

// ShortestColumn assigns each item to the column whose cursor is currently
// lowest, preferring the leftmost column on ties. This balances column
// heights but is not the default; select it with [WithPolicy].
type ShortestColumn struct{}

// Column returns the index of the smallest cursor.
func (ShortestColumn) Column(_ int, cursors []float64) int {
	best := 0
	for c := 1; c < len(cursors); c++ {
		if cursors[c] < cursors[best] {
			best = c
		}
	}
	return best
}

func (ShortestColumn) String() string { return "shortest" }

// PolicyByName resolves a policy name as accepted by the CLI and config
// file. The empty string selects [RoundRobin].
func PolicyByName(name string) (Policy, bool) {
	switch name {
	case "", "round-robin", "roundrobin":
		return RoundRobin{}, true
	case "shortest", "shortest-column":
		return ShortestColumn{}, true
	default:
		return nil, false
	}
}
