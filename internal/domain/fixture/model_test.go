package fixture

import "testing"

func TestExternalKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		source, raw, want string
	}{
		{SourceFootballData, "497410", "fd:497410"},
		{SourceAPIFootball, " 1035037 ", "af:1035037"},
		{SourceOddsAPI, "e912304de2b2ce35b473ce2ecd3d1502", "odds:e912304de2b2ce35b473ce2ecd3d1502"},
		{"custom", "7", "custom:7"},
		{SourceFootballData, "", ""},
		{SourceAPIFootball, "0", ""},
	}
	for _, tc := range cases {
		if got := ExternalKey(tc.source, tc.raw); got != tc.want {
			t.Fatalf("ExternalKey(%q, %q)=%q, want %q", tc.source, tc.raw, got, tc.want)
		}
	}
}

func TestRawExternalID(t *testing.T) {
	t.Parallel()

	if raw, ok := RawExternalID(SourceAPIFootball, "af:1035037"); !ok || raw != "1035037" {
		t.Fatalf("unexpected raw id %q ok=%v", raw, ok)
	}
	if _, ok := RawExternalID(SourceAPIFootball, "fd:1035037"); ok {
		t.Fatalf("expected foreign namespace to be rejected")
	}
	if _, ok := RawExternalID(SourceAPIFootball, "af:"); ok {
		t.Fatalf("expected empty raw id to be rejected")
	}
}
