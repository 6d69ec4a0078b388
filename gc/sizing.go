package gc

import "github.com/beamforge/procgc/sizetab"

// sizeAfterMajor implements post-major sizing: grow immediately if the
// heap can't already hold what's needed, set a lazy-grow hint if it's
// getting tight, or shrink if there's ample headroom.
func sizeAfterMajor(youngSize, needAfter, minHeap int) (newSize int, growHint bool) {
	switch {
	case youngSize < needAfter:
		return sizetab.NextSize(needAfter, 0, minHeap), false
	case 3*youngSize < 4*needAfter:
		return youngSize, true
	case 4*needAfter < youngSize && youngSize > minHeap:
		return sizetab.NextSize(2*needAfter, 0, minHeap), false
	default:
		return youngSize, false
	}
}

// shrinkAfterMinor implements the minor-collection shrink decision: shrink
// a young heap that is now far larger than it needs to be, but never below
// the configured minimum or below oldCapacity/8.
func shrinkAfterMinor(youngSize, needAfter, oldCapacity, minHeap int) (newSize int, shrink bool) {
	if !(youngSize > 3000 && 4*needAfter < youngSize && (youngSize > 8000 || youngSize > oldCapacity)) {
		return youngSize, false
	}
	target := sizetab.NextSize(3*needAfter, 0, minHeap)
	if target < minHeap {
		target = minHeap
	}
	if floor := oldCapacity / 8; target < floor {
		target = floor
	}
	return target, true
}
