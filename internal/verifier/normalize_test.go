package verifier_test

import (
	"mailtrust/internal/verifier"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{
			name: "lowercase",
			in:   "Contact@Sony.COM",
			out:  "contact@sony.com",
			ok:   true,
		},
		{
			name: "trim surrounding whitespace",
			in:   "  user@example.com\t",
			out:  "user@example.com",
			ok:   true,
		},
		{
			name: "already canonical",
			in:   "user@example.com",
			out:  "user@example.com",
			ok:   true,
		},
		{
			name: "malformed input is kept as data",
			in:   "Not-An-Address",
			out:  "not-an-address",
			ok:   true,
		},
		{
			name: "empty",
			in:   "",
			ok:   false,
		},
		{
			name: "whitespace only",
			in:   "   ",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := verifier.NormalizeAddress(tc.in)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tc.out {
					t.Fatalf("expected %q got %q", tc.out, got)
				}

				return
			}
			if err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
		})
	}
}
