package models

import "testing"

func TestHoursFromDecimal(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1, 100},
		{3.5, 350},
		{10.25, 1025},
		{0.01, 1},
		{-2.5, -250},
	}
	for _, tc := range cases {
		if got := HoursFromDecimal(tc.in); got != tc.want {
			t.Errorf("HoursFromDecimal(%v): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0.00"},
		{350, "3.50"},
		{1025, "10.25"},
		{5, "0.05"},
		{-250, "-2.50"},
	}
	for _, tc := range cases {
		if got := FormatHours(tc.in); got != tc.want {
			t.Errorf("FormatHours(%d): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestApplyBasisPoints(t *testing.T) {
	// 10% of 1000.00 is 100.00
	if got := ApplyBasisPoints(100000, 1000); got != 10000 {
		t.Fatalf("expected 10000, got %d", got)
	}
	// 12.5% of 80.00 is 10.00
	if got := ApplyBasisPoints(8000, 1250); got != 1000 {
		t.Fatalf("expected 1000, got %d", got)
	}
	// rounds half up: 15% of 0.03 is 0.0045 -> 0.00
	if got := ApplyBasisPoints(3, 1500); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestSurchargedHours(t *testing.T) {
	cases := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{100, 115},  // 1.00h -> 1.15h
		{200, 230},  // 2.00h -> 2.30h
		{350, 403},  // 3.50h * 1.15 = 4.025 -> rounds up to 4.03
		{1, 2},      // 0.01h -> ceil(0.0115) = 0.02
		{1000, 1150},
	}
	for _, tc := range cases {
		if got := SurchargedHours(tc.in); got != tc.want {
			t.Errorf("SurchargedHours(%d): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestSurchargedHoursNeverUndercharges(t *testing.T) {
	for h := int64(1); h <= 10000; h++ {
		total := SurchargedHours(h)
		if total*10000 < h*11500 {
			t.Fatalf("SurchargedHours(%d) = %d undercharges", h, total)
		}
	}
}

func TestEffectivePriceCents(t *testing.T) {
	pkg := HourPackage{PriceCents: 50000}
	if got := pkg.EffectivePriceCents(); got != 50000 {
		t.Fatalf("expected 50000, got %d", got)
	}

	discount := int64(2000) // 20%
	pkg.DiscountPercentBP = &discount
	if got := pkg.EffectivePriceCents(); got != 40000 {
		t.Fatalf("expected 40000, got %d", got)
	}
}

func TestInsufficientBalanceError(t *testing.T) {
	err := &InsufficientBalanceError{RequiredHours: 300, AvailableHours: 200}
	want := "insufficient hours balance: required 3.00, available 2.00"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
