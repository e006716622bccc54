package ephemeris

import (
	"fmt"
	"time"
)

const (
	// DefaultStep is used for predicates that do not set one.
	DefaultStep = 30 * time.Minute
	// Tolerance bounds the error of a reported event time.
	Tolerance = time.Second

	maxBisections  = 64
	maxTransitions = 16
)

// FindDiscrete samples p every p.Step across [start, end] and bisects
// each bracket in which the value changes. Several changes inside a single
// step are all reported as long as each is isolated by bisection.
func FindDiscrete(start, end time.Time, p Predicate) ([]Event, error) {
	if p.Func == nil {
		return nil, fmt.Errorf("find discrete: nil predicate")
	}
	if !start.Before(end) {
		return nil, nil
	}
	step := p.Step
	if step <= 0 {
		step = DefaultStep
	}

	a := start
	va, err := p.Func(a)
	if err != nil {
		return nil, err
	}

	var events []Event
	for a.Before(end) {
		b := a.Add(step)
		if b.After(end) {
			b = end
		}
		vb, err := p.Func(b)
		if err != nil {
			return nil, err
		}
		lo, vlo := a, va
		for n := 0; vlo != vb; n++ {
			if n == maxTransitions {
				return nil, fmt.Errorf("%w: more than %d changes between %s and %s",
					ErrNoConvergence, maxTransitions, a.Format(time.RFC3339), b.Format(time.RFC3339))
			}
			ev, err := bisect(p.Func, lo, vlo, b)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
			lo, vlo = ev.Time, ev.State
		}
		a, va = b, vb
	}
	return events, nil
}

// bisect narrows [lo, hi] to the first instant whose value differs from vlo.
// f(hi) must differ from vlo.
func bisect(f func(time.Time) (int, error), lo time.Time, vlo int, hi time.Time) (Event, error) {
	vhi, err := f(hi)
	if err != nil {
		return Event{}, err
	}
	for i := 0; hi.Sub(lo) > Tolerance; i++ {
		if i == maxBisections {
			return Event{}, fmt.Errorf("%w: bracket %s", ErrNoConvergence, lo.Format(time.RFC3339))
		}
		mid := lo.Add(hi.Sub(lo) / 2)
		vm, err := f(mid)
		if err != nil {
			return Event{}, err
		}
		if vm == vlo {
			lo = mid
		} else {
			hi, vhi = mid, vm
		}
	}
	return Event{Time: hi, State: vhi}, nil
}
