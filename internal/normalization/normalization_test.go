package normalization

import "testing"

func TestParseInputString(t *testing.T) {
  cases := []struct {
    in   string
    want string
  }{
    {"  hello   world ", "hello world"},
    {"one\n\ttwo", "one two"},
    {"", ""},
    {"   \t\n ", ""},
    {"already clean", "already clean"},
  }
  for _, tc := range cases {
    if got := ParseInputString(tc.in); got != tc.want {
      t.Fatalf("ParseInputString(%q) = %q, want %q", tc.in, got, tc.want)
    }
  }
}

func TestParseEmail(t *testing.T) {
  if got := ParseEmail("  Manager@Example.COM "); got != "manager@example.com" {
    t.Fatalf("ParseEmail: %q", got)
  }
}

func TestParseShiftDate(t *testing.T) {
  cases := []struct {
    in   string
    want string
  }{
    {"2026-03-14", "2026-03-14"},
    {"  2026-03-14  ", "2026-03-14"},
    {"2026/03/14", ""},
    {"2026-3-14", ""},
    {"March 14 2026", ""},
    {"2026-03-1x", ""},
    {"", ""},
    {"20260314", ""},
  }
  for _, tc := range cases {
    if got := ParseShiftDate(tc.in); got != tc.want {
      t.Fatalf("ParseShiftDate(%q) = %q, want %q", tc.in, got, tc.want)
    }
  }
}
