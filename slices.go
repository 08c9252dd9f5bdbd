package gdsio

// DefaultSliceSize bounds how much a single driver call moves. Large single
// calls serialize inside the driver; fanning fixed-size slices across the
// pool saturates throughput instead.
const DefaultSliceSize = 4 * 1024 * 1024

// sliceRange is one contiguous sub-range of a request, relative to the
// request's start.
type sliceRange struct {
	Off int64
	Len int64
}

// sliceRanges decomposes [0, size) into ranges of at most cap bytes each.
// Every byte is covered exactly once; all ranges but the last are cap-sized
// and the last holds the remainder. Zero ranges iff size <= 0.
func sliceRanges(size, cap int64) []sliceRange {
	if size <= 0 {
		return nil
	}
	n := (size + cap - 1) / cap
	out := make([]sliceRange, 0, n)
	for off := int64(0); off < size; off += cap {
		l := cap
		if rem := size - off; rem < cap {
			l = rem
		}
		out = append(out, sliceRange{Off: off, Len: l})
	}
	return out
}
