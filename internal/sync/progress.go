package sync

// ProgressFunc receives push-style progress notifications during a sync:
// a percentage in [0,100] and a human-readable status phrase.
type ProgressFunc func(percent int, message string)

// progressNotifier forwards progress to an optional observer while
// guaranteeing the emitted percentages are non-decreasing and capped at 100.
type progressNotifier struct {
	fn   ProgressFunc
	last int
}

func newProgressNotifier(fn ProgressFunc) *progressNotifier {
	return &progressNotifier{fn: fn}
}

func (n *progressNotifier) emit(percent int, message string) {
	if percent < n.last {
		percent = n.last
	}
	if percent > 100 {
		percent = 100
	}
	n.last = percent

	if n.fn != nil {
		n.fn(percent, message)
	}
}
