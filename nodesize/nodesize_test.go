package nodesize

import "testing"

func TestOfIncludesListOverheadAndValueSize(t *testing.T) {
	small := Of[uint8]()
	large := Of[[64]byte]()
	if large-small != 64-1 {
		t.Fatalf("Of()'s delta between a 1-byte and a 64-byte payload = %d, want %d", large-small, 64-1)
	}
	if small <= 0 {
		t.Fatalf("Of[uint8]() = %d, want > 0", small)
	}
}

func TestOfValueAgreesWithOf(t *testing.T) {
	var addr int64
	if got, want := OfValue(addr), Of[int64](); got != want {
		t.Fatalf("OfValue(int64) = %d, want %d (matching Of[int64]())", got, want)
	}
}
