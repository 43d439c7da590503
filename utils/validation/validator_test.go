package validation

import "testing"

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "how do I factor x^2 + 2x?", "how do I factor x^2 + 2x?"},
		{"tags removed", "<b>bold</b> question", "bold question"},
		{"script dropped with content kept out of markup", "<script>alert(1)</script>hi", "alert(1)hi"},
		{"nested markup", "<div><p>first</p><p>second</p></div>", "firstsecond"},
		{"whitespace trimmed", "  padded  ", "padded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripHTML(tc.in); got != tc.want {
				t.Fatalf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@example.com", "a.b+c@sub.domain.org"}
	for _, e := range valid {
		if !ValidateEmail(e) {
			t.Fatalf("expected %q to be valid", e)
		}
	}

	invalid := []string{"", "no-at-sign", "@nodomain", "user@", "user@host"}
	for _, e := range invalid {
		if ValidateEmail(e) {
			t.Fatalf("expected %q to be invalid", e)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if ok, _ := ValidateUsername("priya_17"); !ok {
		t.Fatal("expected priya_17 to be valid")
	}
	if ok, _ := ValidateUsername("ab"); ok {
		t.Fatal("expected short username to be rejected")
	}
	if ok, _ := ValidateUsername("bad name!"); ok {
		t.Fatal("expected username with spaces to be rejected")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  a\x00b  "); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
}
