package domain

// Status is the coarse state of a grid.
type Status uint8

const (
	InProgress Status = iota
	Win
	Draw
)

func (s Status) String() string {
	switch s {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

// Outcome is derived from a grid and never stored on its own. Winner and Line
// are only meaningful when Status is Win.
type Outcome struct {
	Status Status
	Winner Cell
	Line   [3]int
}

// Decided reports whether the game on this grid is over.
func (o Outcome) Decided() bool { return o.Status != InProgress }

// Contains reports whether index lies on the winning line.
func (o Outcome) Contains(index int) bool {
	if o.Status != Win {
		return false
	}
	for _, i := range o.Line {
		if i == index {
			return true
		}
	}
	return false
}

// Lines enumerates the winning lines in evaluation order.
var Lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate returns the outcome of g. The first uniform line in Lines wins.
func Evaluate(g Grid) Outcome {
	for _, ln := range Lines {
		a := g[ln[0]]
		if a != Empty && a == g[ln[1]] && a == g[ln[2]] {
			return Outcome{Status: Win, Winner: a, Line: ln}
		}
	}
	if g.Full() {
		return Outcome{Status: Draw}
	}
	return Outcome{Status: InProgress}
}
