package physics

// table maps handles to backend body records. Slots are recycled and bumped
// to a new generation on removal so stale handles never resolve.
type table[T any] struct {
	gen    []generation
	values []T
	live   []bool
	free   []slotID
	count  int
}

func (t *table[T]) insert(v T) Handle {
	var id slotID
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.gen = append(t.gen, 0)
		t.values = append(t.values, v)
		t.live = append(t.live, false)
		id = slotID(len(t.gen))
	}
	idx := int(id) - 1
	t.values[idx] = v
	t.live[idx] = true
	t.count++
	return makeHandle(id, t.gen[idx])
}

func (t *table[T]) get(h Handle) (T, bool) {
	var zero T
	idx, ok := t.index(h)
	if !ok {
		return zero, false
	}
	return t.values[idx], true
}

func (t *table[T]) remove(h Handle) bool {
	idx, ok := t.index(h)
	if !ok {
		return false
	}
	var zero T
	t.values[idx] = zero
	t.live[idx] = false
	t.gen[idx]++
	t.free = append(t.free, slotID(idx+1))
	t.count--
	return true
}

func (t *table[T]) each(fn func(h Handle, v T)) {
	for i, alive := range t.live {
		if !alive {
			continue
		}
		fn(makeHandle(slotID(i+1), t.gen[i]), t.values[i])
	}
}

func (t *table[T]) len() int {
	return t.count
}

func (t *table[T]) index(h Handle) (int, bool) {
	if !h.Valid() {
		return 0, false
	}
	idx := int(h.slot()) - 1
	if idx >= len(t.gen) || !t.live[idx] || t.gen[idx] != h.generation() {
		return 0, false
	}
	return idx, true
}
