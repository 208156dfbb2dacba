package storage

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTimeRoundTrip(t *testing.T) {
	orig := time.Date(2026, 3, 31, 15, 4, 5, 0, time.UTC)

	decoded, err := decodeTime(encodeTime(orig))
	if err != nil {
		t.Fatalf("decodeTime: %v", err)
	}
	if !decoded.Equal(orig) {
		t.Errorf("round trip changed time: got %v, want %v", decoded, orig)
	}
}

func TestEncodeTimeNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2026, 3, 31, 2, 0, 0, 0, loc)

	decoded, err := decodeTime(encodeTime(local))
	if err != nil {
		t.Fatalf("decodeTime: %v", err)
	}
	if !decoded.Equal(local) {
		t.Errorf("got %v, want instant equal to %v", decoded, local)
	}
	if decoded.Location() != time.UTC {
		t.Errorf("expected UTC storage, got %v", decoded.Location())
	}
}

func TestEncodeTimeOrdering(t *testing.T) {
	// Date range queries compare stored strings lexicographically, so
	// encoding must preserve chronological order. The sub-second cases
	// matter: a variable-width fraction sorts whole seconds after their
	// own fractional instants.
	cases := []struct {
		name    string
		earlier time.Time
		later   time.Time
	}{
		{
			"month boundary",
			time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC),
			time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"whole second before fractional",
			time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 5, 1, 0, 0, 0, 500_000_000, time.UTC),
		},
		{
			"fractional before next second",
			time.Date(2026, 5, 1, 0, 0, 0, 999_999_999, time.UTC),
			time.Date(2026, 5, 1, 0, 0, 1, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if encodeTime(tc.earlier) >= encodeTime(tc.later) {
				t.Errorf("encoded order broken: %q >= %q", encodeTime(tc.earlier), encodeTime(tc.later))
			}
		})
	}
}

func TestTimeRoundTripSubSecond(t *testing.T) {
	orig := time.Date(2026, 5, 1, 0, 0, 0, 500_000_000, time.UTC)

	decoded, err := decodeTime(encodeTime(orig))
	if err != nil {
		t.Fatalf("decodeTime: %v", err)
	}
	if !decoded.Equal(orig) {
		t.Errorf("round trip changed time: got %v, want %v", decoded, orig)
	}
}

func TestNullTimeRoundTrip(t *testing.T) {
	if got := encodeNullTime(time.Time{}); got.Valid {
		t.Errorf("zero time should encode to NULL, got %q", got.String)
	}

	decoded, err := decodeNullTime(sql.NullString{})
	if err != nil {
		t.Fatalf("decodeNullTime: %v", err)
	}
	if !decoded.IsZero() {
		t.Errorf("NULL should decode to zero time, got %v", decoded)
	}

	orig := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	decoded, err = decodeNullTime(encodeNullTime(orig))
	if err != nil {
		t.Fatalf("decodeNullTime: %v", err)
	}
	if !decoded.Equal(orig) {
		t.Errorf("round trip changed time: got %v, want %v", decoded, orig)
	}
}

func TestAmountRoundTrip(t *testing.T) {
	orig := decimal.RequireFromString("1234.56")

	decoded, err := decodeAmount(encodeAmount(orig))
	if err != nil {
		t.Fatalf("decodeAmount: %v", err)
	}
	if !decoded.Equal(orig) {
		t.Errorf("round trip changed amount: got %s, want %s", decoded, orig)
	}

	if _, err := decodeAmount("not a number"); err == nil {
		t.Error("expected error for malformed amount")
	}
}

func TestNullString(t *testing.T) {
	if got := nullString(""); got.Valid {
		t.Errorf("empty string should encode to NULL, got %q", got.String)
	}
	if got := nullString("abc"); !got.Valid || got.String != "abc" {
		t.Errorf("unexpected encoding: %+v", got)
	}
}
