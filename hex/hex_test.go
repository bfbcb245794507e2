package hex

import "testing"

func TestDecode(t *testing.T) {
	cases := []struct {
		in string
		ok bool
		v  uint64
	}{
		{"000a", true, 10},
		{"f01", true, 3841},
		{"hi", false, 0},
		{"", false, 0},
		{"FF", true, 255},
	}

	for _, c := range cases {
		v, ok := Decode([]byte(c.in))
		if ok != c.ok || (ok && v != c.v) {
			t.Errorf("Decode(%q) = (%d, %v), want (%d, %v)", c.in, v, ok, c.v, c.ok)
		}
	}
}

func TestDecodePairFullRange(t *testing.T) {
	for i := 0; i < 256; i++ {
		enc := EncodeBytes([]byte{byte(i)})
		v, ok := DecodePair(enc[0], enc[1])
		if !ok || int(v) != i {
			t.Fatalf("DecodePair(%q) = (%d, %v), want (%d, true)", enc, v, ok, i)
		}
	}

	if _, ok := DecodePair('g', '0'); ok {
		t.Fatal("expected DecodePair to reject non-hex digit")
	}
}

func TestAppendUintRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 15, 16, 255, 256, 1 << 32, ^uint64(0)} {
		enc := AppendUint(nil, v)
		got, ok := Decode(enc)
		if !ok || got != v {
			t.Fatalf("round trip of %d via %q gave (%d, %v)", v, enc, got, ok)
		}
	}
}

func TestAppendUintNoLeadingZeros(t *testing.T) {
	if got := string(AppendUint(nil, 0)); got != "0" {
		t.Fatalf("AppendUint(0) = %q, want \"0\"", got)
	}

	if got := string(AppendUint(nil, 0x1a)); got != "1a" {
		t.Fatalf("AppendUint(0x1a) = %q, want \"1a\"", got)
	}
}
