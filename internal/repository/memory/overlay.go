package memory

// overlay holds one transaction's uncommitted writes to a table. Rows the
// transaction created live in put; changes to rows it did not create are kept
// as field edits and replayed onto the committed row at commit time, so
// columns it never touched keep whatever other transactions committed.
type overlay[K comparable, V any] struct {
	put  map[K]V
	del  map[K]struct{}
	edit map[K][]func(*V)
}

func newOverlay[K comparable, V any]() *overlay[K, V] {
	return &overlay[K, V]{
		put:  make(map[K]V),
		del:  make(map[K]struct{}),
		edit: make(map[K][]func(*V)),
	}
}

func (o *overlay[K, V]) get(base map[K]V, key K) (V, bool) {
	if _, gone := o.del[key]; gone {
		var zero V
		return zero, false
	}
	if v, ok := o.put[key]; ok {
		return v, true
	}
	v, ok := base[key]
	if !ok {
		return v, false
	}
	return o.edited(key, v), true
}

func (o *overlay[K, V]) edited(key K, v V) V {
	for _, fn := range o.edit[key] {
		fn(&v)
	}
	return v
}

func (o *overlay[K, V]) set(key K, v V) {
	delete(o.del, key)
	delete(o.edit, key)
	o.put[key] = v
}

// patch records a change to some fields of an existing row.
func (o *overlay[K, V]) patch(key K, fn func(*V)) {
	if v, ok := o.put[key]; ok {
		fn(&v)
		o.put[key] = v
		return
	}
	o.edit[key] = append(o.edit[key], fn)
}

func (o *overlay[K, V]) remove(key K) {
	delete(o.put, key)
	delete(o.edit, key)
	o.del[key] = struct{}{}
}

// filter returns the merged rows of base and the overlay that satisfy keep.
func (o *overlay[K, V]) filter(base map[K]V, keep func(V) bool) []V {
	var out []V
	for k, v := range base {
		if _, gone := o.del[k]; gone {
			continue
		}
		if _, shadowed := o.put[k]; shadowed {
			continue
		}
		if v = o.edited(k, v); keep(v) {
			out = append(out, v)
		}
	}
	for _, v := range o.put {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (o *overlay[K, V]) apply(base map[K]V) {
	for k := range o.del {
		delete(base, k)
	}
	for k, v := range o.put {
		base[k] = v
	}
	for k := range o.edit {
		// a row removed by a concurrent commit stays removed
		if v, ok := base[k]; ok {
			base[k] = o.edited(k, v)
		}
	}
}
