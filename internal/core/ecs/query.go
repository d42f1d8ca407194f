package ecs

// Each2 iterates over entities that have both component A and B.
// It walks the smaller store in dense order and probes the larger one.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for i := range sa.data {
			id := sa.ids[i]
			if j, ok := sb.index[id]; ok {
				fn(id, &sa.data[i], &sb.data[j])
			}
		}
		return
	}
	for j := range sb.data {
		id := sb.ids[j]
		if i, ok := sa.index[id]; ok {
			fn(id, &sa.data[i], &sb.data[j])
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa *Store[A], sb *Store[B], sc *Store[C], fn func(EntityID, *A, *B, *C)) {
	// Iterate the smallest store
	smallest := sa.Len()
	which := 0
	if sb.Len() < smallest {
		smallest = sb.Len()
		which = 1
	}
	if sc.Len() < smallest {
		which = 2
	}

	switch which {
	case 0:
		for i := range sa.data {
			id := sa.ids[i]
			if j, ok := sb.index[id]; ok {
				if k, ok := sc.index[id]; ok {
					fn(id, &sa.data[i], &sb.data[j], &sc.data[k])
				}
			}
		}
	case 1:
		for j := range sb.data {
			id := sb.ids[j]
			if i, ok := sa.index[id]; ok {
				if k, ok := sc.index[id]; ok {
					fn(id, &sa.data[i], &sb.data[j], &sc.data[k])
				}
			}
		}
	case 2:
		for k := range sc.data {
			id := sc.ids[k]
			if i, ok := sa.index[id]; ok {
				if j, ok := sb.index[id]; ok {
					fn(id, &sa.data[i], &sb.data[j], &sc.data[k])
				}
			}
		}
	}
}
