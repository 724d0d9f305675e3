package fixedpoint

import "testing"

func TestLocalGasCost_Parity(t *testing.T) {
	remote := Uint128{Low: 1_000_000}
	rate := Uint128{Low: 10_000_000_000} // parity

	got, err := LocalGasCost(remote, rate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Low != 1_000_000 || got.High != 0 {
		t.Errorf("expected parity round-trip, got %+v", got)
	}
}

func TestLocalGasCost_RoundsTowardZero(t *testing.T) {
	remote := Uint128{Low: 3}
	rate := Uint128{Low: 1} // 3 * 1 / 1e10 truncates to 0

	got, err := LocalGasCost(remote, rate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Low != 0 || got.High != 0 {
		t.Errorf("expected truncation to zero, got %+v", got)
	}
}

func TestLocalGasCost_RejectsNonPositiveRate(t *testing.T) {
	remote := Uint128{Low: 100}
	zeroRate := Uint128{}

	_, err := LocalGasCost(remote, zeroRate)
	if err != ErrNonPositiveRate {
		t.Errorf("expected ErrNonPositiveRate, got %v", err)
	}
}

func TestUint128_RoundTrip(t *testing.T) {
	want := Uint128{High: 42, Low: 9999999999}
	got, err := FromBig(want.ToBig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch: got %+v want %+v", got, want)
	}
}
