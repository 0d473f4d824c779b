// Package mapper converts between persistence models, domain records and
// presentation DTOs.
package mapper

// MapSlice applies fn to each element. A nil input stays nil.
func MapSlice[T, R any](items []T, fn func(T) R) []R {
	if items == nil {
		return nil
	}
	return MapList(items, fn)
}

// MapList is MapSlice for output encoded for clients: the result is never
// nil, so an empty collection renders as [].
func MapList[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

// MapValid keeps the elements fn converts and hands each rejected element to
// skip, which may be nil. The result is never nil.
func MapValid[T, R any](items []T, fn func(T) (R, error), skip func(T, error)) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		v, err := fn(item)
		if err != nil {
			if skip != nil {
				skip(item, err)
			}
			continue
		}
		out = append(out, v)
	}
	return out
}
