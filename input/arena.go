package input

// arena is a sparse set of per-binding runtime slots keyed by BindingID.
// Dense storage keeps iteration cache-friendly; the sparse index gives O(1)
// lookup and removal.
type arena[T any] struct {
	denseIDs    []BindingID
	denseValues []T
	sparse      []int
}

func (a *arena[T]) has(id BindingID) bool {
	if a == nil || id <= 0 || int(id)-1 >= len(a.sparse) {
		return false
	}
	idx := a.sparse[id-1]
	return idx >= 0 && idx < len(a.denseIDs) && a.denseIDs[idx] == id
}

// get returns a pointer into dense storage; it is invalidated by set/remove.
func (a *arena[T]) get(id BindingID) *T {
	if !a.has(id) {
		return nil
	}
	return &a.denseValues[a.sparse[id-1]]
}

func (a *arena[T]) set(id BindingID, v T) {
	if a == nil || id <= 0 {
		return
	}
	for int(id)-1 >= len(a.sparse) {
		a.sparse = append(a.sparse, -1)
	}
	if a.has(id) {
		a.denseValues[a.sparse[id-1]] = v
		return
	}
	a.denseIDs = append(a.denseIDs, id)
	a.denseValues = append(a.denseValues, v)
	a.sparse[id-1] = len(a.denseIDs) - 1
}

func (a *arena[T]) remove(id BindingID) {
	if !a.has(id) {
		return
	}
	idx := a.sparse[id-1]
	last := len(a.denseIDs) - 1
	lastID := a.denseIDs[last]

	a.denseIDs[idx] = a.denseIDs[last]
	a.denseValues[idx] = a.denseValues[last]
	a.sparse[lastID-1] = idx

	var zero T
	a.denseValues[last] = zero
	a.denseIDs = a.denseIDs[:last]
	a.denseValues = a.denseValues[:last]
	a.sparse[id-1] = -1
}

func (a *arena[T]) len() int {
	if a == nil {
		return 0
	}
	return len(a.denseIDs)
}

// clone copies the set; copyValue deep-copies each slot.
func (a *arena[T]) clone(copyValue func(T) T) arena[T] {
	out := arena[T]{
		denseIDs:    append([]BindingID(nil), a.denseIDs...),
		denseValues: make([]T, len(a.denseValues)),
		sparse:      append([]int(nil), a.sparse...),
	}
	for i, v := range a.denseValues {
		out.denseValues[i] = copyValue(v)
	}
	return out
}
