package fib

const (
	fibEntrySize = 4 // bytes per F[] table entry (uint32)
	dirEntrySize = 1 // bytes per direction-table cell
)

// fibonacciSequence builds F[0..] where F[0..d] = 1, 2, ..., d+1 and
// F[k] = F[k-1] + F[k-1-d] for k > d. Growth stops once maxCount entries
// have been produced, or once a value exceeds maxValue (that overshooting
// value is still appended, giving callers an explicit upper bound).
func fibonacciSequence(maxCount, maxValue, d int) []int {
	if maxCount < d+1 {
		maxCount = d + 1
	}
	f := make([]int, 0, maxCount)
	for i := 0; i <= d; i++ {
		f = append(f, i+1)
	}
	for len(f) < maxCount {
		k := len(f)
		next := f[k-1] + f[k-1-d]
		f = append(f, next)
		if next > maxValue {
			break
		}
	}
	return f
}

func alignUp(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

func alignDown(n, a int) int {
	return n &^ (a - 1)
}

// layout is the outcome of the region layout planner: the class count N,
// the technical block unit b, and the byte offsets (relative to the start
// of the caller's region) of every metadata table plus the user data
// region itself.
type layout struct {
	N int
	B int
	F []int

	fibOffset  int
	dirOffset  int
	poolOffset int

	poolSlotSize int
	poolCount    int

	dataOffset int
	dataSize   int
}

// planLayout computes a layout hosting as many size classes as the region
// can support, per the algorithm in the region layout planner: grow a
// candidate Fibonacci sequence, then try decreasing class counts N until
// the technical block size b that remains after subtracting metadata is
// at least b0 and a multiple of A.
func planLayout(cfg Config, regionSize int) (*layout, error) {
	if regionSize < minRegionSize {
		return nil, ErrRegionTooSmall
	}
	d := cfg.IndexDifference
	a := cfg.Alignment
	b0 := cfg.MinBlockSize

	full := fibonacciSequence(4096, regionSize, d)

	for n := len(full); n > d+2; n-- {
		f := full[:n]
		poolCount := f[n-2-d]

		hdrSize := n*fibEntrySize + n*n*dirEntrySize
		dataOffset := alignUp(hdrSize+(poolCount+1)*freeSetNodeSize, a)
		if dataOffset >= regionSize {
			continue
		}

		remaining := regionSize - dataOffset
		b := alignDown(remaining/f[n-1], a)
		if b < b0 {
			continue
		}

		return &layout{
			N: n,
			B: b,
			F: f,

			fibOffset:  0,
			dirOffset:  n * fibEntrySize,
			poolOffset: n*fibEntrySize + n*n*dirEntrySize,

			poolSlotSize: freeSetNodeSize,
			poolCount:    poolCount,

			dataOffset: dataOffset,
			dataSize:   b * f[n-1],
		}, nil
	}
	return nil, ErrRegionTooSmall
}
