package services

import "testing"

func TestComputeFeeSplit(t *testing.T) {
	cases := []struct {
		gross, percent int64
		fee, net       int64
	}{
		{10000, 12, 1200, 8800},
		{123400, 12, 14808, 108592},
		{999900, 12, 119988, 879912},
		// Fractional split rounds the fee up.
		{101, 12, 13, 88},
		{1, 12, 1, 0},
		{10000, 0, 0, 10000},
		{10000, 100, 10000, 0},
		{0, 12, 0, 0},
	}
	for _, c := range cases {
		fee, net := ComputeFeeSplit(c.gross, c.percent)
		if fee != c.fee || net != c.net {
			t.Fatalf("ComputeFeeSplit(%d, %d) = (%d, %d), want (%d, %d)", c.gross, c.percent, fee, net, c.fee, c.net)
		}
		if fee+net != c.gross {
			t.Fatalf("ComputeFeeSplit(%d, %d): fee+net=%d, want gross", c.gross, c.percent, fee+net)
		}
	}
}

func TestComputeFeeSplitConservation(t *testing.T) {
	for gross := int64(0); gross <= 500; gross++ {
		for _, pct := range []int64{1, 7, 12, 25, 50, 99} {
			fee, net := ComputeFeeSplit(gross, pct)
			if fee+net != gross {
				t.Fatalf("gross=%d pct=%d: fee=%d net=%d does not conserve", gross, pct, fee, net)
			}
			if fee < 0 || net < 0 {
				t.Fatalf("gross=%d pct=%d: negative bucket fee=%d net=%d", gross, pct, fee, net)
			}
			want := (gross*pct + 99) / 100
			if fee != want {
				t.Fatalf("gross=%d pct=%d: fee=%d, want ceil=%d", gross, pct, fee, want)
			}
		}
	}
}
