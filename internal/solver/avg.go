package solver

// EMA is an exponential moving average, used to approximate both the
// recent-window and global running means the LBD-average restart
// controller compares (spec §4.7): a low decay approximates a short
// window, a decay close to 1 approximates a long-run global average.
type EMA struct {
	decay float64
	value float64
	init  bool
}

// NewEMA returns an EMA with the given decay in (0, 1).
func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

// Add folds x into the average.
func (e *EMA) Add(x float64) {
	if !e.init {
		e.init = true
		e.value = x
		return
	}
	e.value = e.decay*e.value + x*(1-e.decay)
}

// Val returns the current average.
func (e *EMA) Val() float64 { return e.value }
