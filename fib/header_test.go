package fib

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{Buddy: false, Memory: false, Index: 0},
		{Buddy: true, Memory: false, Index: 17},
		{Buddy: false, Memory: true, Index: 1<<29 - 1},
		{Buddy: true, Memory: true, Index: 42},
	}
	for _, h := range cases {
		block := make([]byte, headerSizeBytes)
		putHeader(block, h)
		got := getHeader(block)
		if got != h {
			t.Errorf("round trip of %+v produced %+v", h, got)
		}
	}
}

func TestEncodeDecodeCellRoundTrip(t *testing.T) {
	cases := []cell{
		{Exact: true, Dir: dirHere},
		{Exact: false, Dir: dirLeft},
		{Exact: true, Dir: dirRight},
		{Exact: false, Dir: dirHere},
	}
	for _, c := range cases {
		got := decodeCell(encodeCell(c))
		if got != c {
			t.Errorf("round trip of %+v produced %+v", c, got)
		}
	}
}
