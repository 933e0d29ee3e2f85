// Package reveal tracks one-shot scroll reveals for a mounted step.
//
// Each element starts Hidden and flips to Revealed the first time enough of
// it is inside the viewport. A revealed element is no longer observed, so
// scrolling it out and back never changes it again.
package reveal

// DefaultThreshold is the visible fraction needed to reveal an element.
const DefaultThreshold = 0.25

type Visibility int

const (
	Hidden Visibility = iota
	Revealed
)

func (v Visibility) String() string {
	if v == Revealed {
		return "revealed"
	}
	return "hidden"
}

// Intersector reports the fraction of an element inside the viewport.
// ok is false when the element has no known geometry yet.
type Intersector interface {
	Ratio(id string) (ratio float64, ok bool)
}

type element struct {
	id        string
	state     Visibility
	observing bool
}

type Animator struct {
	threshold float64
	elements  []*element
	index     map[string]*element
}

func New(threshold float64) *Animator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Animator{threshold: threshold, index: map[string]*element{}}
}

// Mount registers and starts observing elements. Previously registered
// elements are dropped.
func (a *Animator) Mount(ids ...string) {
	a.elements = a.elements[:0]
	a.index = make(map[string]*element, len(ids))
	for _, id := range ids {
		if _, dup := a.index[id]; dup {
			continue
		}
		el := &element{id: id, observing: true}
		a.elements = append(a.elements, el)
		a.index[id] = el
	}
}

// Observe checks every observed element against the viewport and reveals
// those at or over the threshold. It returns the ids revealed by this call.
func (a *Animator) Observe(in Intersector) []string {
	var revealed []string
	for _, el := range a.elements {
		if !el.observing {
			continue
		}
		ratio, ok := in.Ratio(el.id)
		if !ok || ratio < a.threshold {
			continue
		}
		el.state = Revealed
		el.observing = false
		revealed = append(revealed, el.id)
	}
	return revealed
}

// Unmount stops observing all elements, revealed or not.
func (a *Animator) Unmount() {
	for _, el := range a.elements {
		el.observing = false
	}
}

func (a *Animator) Visible(id string) bool {
	el, ok := a.index[id]
	return ok && el.state == Revealed
}

func (a *Animator) State(id string) Visibility {
	if el, ok := a.index[id]; ok {
		return el.state
	}
	return Hidden
}

func (a *Animator) Observing(id string) bool {
	el, ok := a.index[id]
	return ok && el.observing
}

// Snapshot copies the visibility flags for rendering.
func (a *Animator) Snapshot() map[string]bool {
	out := make(map[string]bool, len(a.elements))
	for _, el := range a.elements {
		out[el.id] = el.state == Revealed
	}
	return out
}

// IDs lists registered elements in mount order.
func (a *Animator) IDs() []string {
	ids := make([]string, 0, len(a.elements))
	for _, el := range a.elements {
		ids = append(ids, el.id)
	}
	return ids
}
