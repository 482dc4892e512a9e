package fib

import "testing"

func newTestFreeSets(t *testing.T, n, poolCount int) *freeSets {
	t.Helper()
	lay := &layout{
		N:            n,
		poolOffset:   0,
		poolSlotSize: freeSetNodeSize,
		poolCount:    poolCount,
	}
	region := make([]byte, (poolCount+1)*freeSetNodeSize)
	fs, err := newFreeSets(region, lay)
	if err != nil {
		t.Fatalf("newFreeSets() failed: %v", err)
	}
	return fs
}

func TestFreeSetsInsertKeepsAscendingOrder(t *testing.T) {
	fs := newTestFreeSets(t, 4, 8)
	for _, addr := range []int{300, 100, 200} {
		if err := fs.insert(1, addr); err != nil {
			t.Fatalf("insert(%d) failed: %v", addr, err)
		}
	}
	if fs.size(1) != 3 {
		t.Fatalf("size(1) = %d, want 3", fs.size(1))
	}
	var got []int
	for {
		addr, ok := fs.popLowest(1)
		if !ok {
			break
		}
		got = append(got, addr)
	}
	want := []int{100, 200, 300}
	if len(got) != len(want) {
		t.Fatalf("drained %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drained[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFreeSetsEraseMiddleElement(t *testing.T) {
	fs := newTestFreeSets(t, 4, 8)
	fs.insert(2, 10)
	fs.insert(2, 20)
	fs.insert(2, 30)

	if !fs.erase(2, 20) {
		t.Fatalf("erase(20) reported not found")
	}
	if fs.size(2) != 2 {
		t.Fatalf("size(2) = %d, want 2", fs.size(2))
	}
	if fs.erase(2, 999) {
		t.Fatalf("erase(999) reported found for an address never inserted")
	}

	addr, ok := fs.peekLowest(2)
	if !ok || addr != 10 {
		t.Fatalf("peekLowest(2) = (%d, %v), want (10, true)", addr, ok)
	}
}

func TestFreeSetsEmptyAndPoolExhaustion(t *testing.T) {
	fs := newTestFreeSets(t, 2, 2)
	if !fs.empty(0) {
		t.Fatalf("empty(0) = false on a fresh free-set array")
	}
	fs.insert(0, 1)
	fs.insert(0, 2)
	if err := fs.insert(1, 3); err == nil {
		t.Fatalf("insert() succeeded past the pool's node capacity")
	}
}
