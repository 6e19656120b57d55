package tunable

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Tunable is a value the operator can nudge up and down from the controller
// during a match.
type Tunable struct {
	Name string
	Step float64

	bits uint64
}

func (t *Tunable) Add(steps int) {
	for {
		old := atomic.LoadUint64(&t.bits)
		newV := math.Float64frombits(old) + float64(steps)*t.Step
		if atomic.CompareAndSwapUint64(&t.bits, old, math.Float64bits(newV)) {
			fmt.Println("Tunable", t.Name, "=", newV)
			return
		}
	}
}

func (t *Tunable) Get() float64 {
	return math.Float64frombits(atomic.LoadUint64(&t.bits))
}

func (t *Tunable) Set(v float64) {
	atomic.StoreUint64(&t.bits, math.Float64bits(v))
}

type Tunables struct {
	lock     sync.Mutex
	All      []*Tunable
	selected int
}

func (t *Tunables) Create(name string, value, step float64) *Tunable {
	t.lock.Lock()
	defer t.lock.Unlock()
	newTunable := &Tunable{
		Name: name,
		Step: step,
	}
	newTunable.Set(value)
	t.All = append(t.All, newTunable)
	return newTunable
}

func (t *Tunables) SelectNext() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if len(t.All) == 0 {
		return
	}
	t.selected++
	if t.selected >= len(t.All) {
		t.selected = 0
	}
	fmt.Println("Tunable", t.All[t.selected].Name, "selected, value:", t.All[t.selected].Get())
}

func (t *Tunables) SelectPrev() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if len(t.All) == 0 {
		return
	}
	t.selected--
	if t.selected < 0 {
		t.selected = len(t.All) - 1
	}
	fmt.Println("Tunable", t.All[t.selected].Name, "selected, value:", t.All[t.selected].Get())
}

// Current returns the selected tunable, or nil if there are none.
func (t *Tunables) Current() *Tunable {
	t.lock.Lock()
	defer t.lock.Unlock()
	if len(t.All) == 0 {
		return nil
	}
	return t.All[t.selected]
}
