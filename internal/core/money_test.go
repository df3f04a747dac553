package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"0", 0, true},
		{"1.0", 100, true},
		{"23.50", 2350, true},
		{"23.", 2300, true},
		{"0.01", 1, true},
		{" 2.50 ", 250, true},
		{"13.555", 0, false},
		{"-1", 0, false},
		{"1,23", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".5", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
		{"92233720368547758.07", 9223372036854775807, true},
		{"92233720368547758.08", 0, false},
		{"100000000000000000", 0, false},
		{"92233720368547758", 9223372036854775800, true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got)
		}
	}
}

func TestIsAmountInput(t *testing.T) {
	for _, ok := range []string{"", "1", "23.5", "23.50", "23."} {
		if !IsAmountInput(ok) {
			t.Errorf("%q should be accepted", ok)
		}
	}
	for _, bad := range []string{"13.555", "a", "-2", "1e5"} {
		if IsAmountInput(bad) {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		195:       "$1.95",
		109500:    "$1,095.00",
		123456789: "$1,234,567.89",
		-4500:     "-$45.00",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMoneyInput(t *testing.T) {
	if got := (Money{Cents: 2350}).Input(); got != "23.50" {
		t.Fatalf("Input() = %q", got)
	}
}
