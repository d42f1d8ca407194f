package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
	Clear()
}

// Store is a dense typed component table. Values live contiguously in data;
// index maps an entity to its slot. Removal swaps the last slot into the hole,
// so iteration order is stable for a given sequence of Set/Remove calls.
type Store[T any] struct {
	ids   []EntityID
	data  []T
	index map[EntityID]int
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		ids:   make([]EntityID, 0, 64),
		data:  make([]T, 0, 64),
		index: make(map[EntityID]int, 64),
	}
}

// Set attaches c to id, replacing any previous value.
func (s *Store[T]) Set(id EntityID, c T) {
	if i, ok := s.index[id]; ok {
		s.data[i] = c
		return
	}
	s.index[id] = len(s.data)
	s.ids = append(s.ids, id)
	s.data = append(s.data, c)
}

// Get returns a pointer into the table. The pointer is invalidated by the
// next Set or Remove on this store.
func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.data[i], true
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.data) - 1
	if i != last {
		s.data[i] = s.data[last]
		s.ids[i] = s.ids[last]
		s.index[s.ids[i]] = i
	}
	var zero T
	s.data[last] = zero
	s.data = s.data[:last]
	s.ids = s.ids[:last]
	delete(s.index, id)
}

func (s *Store[T]) Clear() {
	clear(s.index)
	clear(s.data)
	s.data = s.data[:0]
	s.ids = s.ids[:0]
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Each visits every entry in dense order.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for i := range s.data {
		fn(s.ids[i], &s.data[i])
	}
}

// IDs returns a copy of the entity ids currently in the table.
func (s *Store[T]) IDs() []EntityID {
	out := make([]EntityID, len(s.ids))
	copy(out, s.ids)
	return out
}
