package domain

import (
	"cmp"
	"errors"
	"slices"
)

// Roadmap is the full list of tasks. Display order is by Date; nothing else
// about the order is meaningful.
type Roadmap []Task

// Clone returns an independent copy. Tasks hold no references, so a shallow
// slice copy is a deep copy.
func (r Roadmap) Clone() Roadmap {
	if r == nil {
		return Roadmap{}
	}
	return slices.Clone(r)
}

// Sorted returns a copy ordered by Date ascending. Tasks sharing a date keep
// their relative order.
func (r Roadmap) Sorted() Roadmap {
	out := r.Clone()
	slices.SortStableFunc(out, func(a, b Task) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// Equal reports deep value equality. A nil and an empty roadmap are equal.
func (r Roadmap) Equal(other Roadmap) bool {
	return slices.Equal(r, other)
}

// IndexOf returns the position of the task with the given id, or -1.
func (r Roadmap) IndexOf(id string) int {
	return slices.IndexFunc(r, func(t Task) bool { return t.ID == id })
}

// Find returns the task with the given id.
func (r Roadmap) Find(id string) (Task, bool) {
	i := r.IndexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return r[i], true
}

// Replace returns a copy with the task carrying t.ID swapped for t.
func (r Roadmap) Replace(t Task) Roadmap {
	out := r.Clone()
	if i := out.IndexOf(t.ID); i >= 0 {
		out[i] = t
	}
	return out
}

// Without returns a copy with the task carrying id removed.
func (r Roadmap) Without(id string) Roadmap {
	return slices.DeleteFunc(r.Clone(), func(t Task) bool { return t.ID == id })
}

// Normalized fills task defaults and gives every task a unique id: a
// missing or repeated id is replaced by newID.
func (r Roadmap) Normalized(newID func() string) Roadmap {
	out := make(Roadmap, len(r))
	seen := make(map[string]bool, len(r))
	for i, t := range r {
		t = t.Normalized()
		if t.ID == "" || seen[t.ID] {
			t.ID = newID()
		}
		seen[t.ID] = true
		out[i] = t
	}
	return out
}

// Validate checks every task and id uniqueness.
func (r Roadmap) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(r))
	for _, t := range r {
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[t.ID] {
			errs = append(errs, errors.New("duplicate task id "+t.ID))
		}
		seen[t.ID] = true
	}
	return errors.Join(errs...)
}
