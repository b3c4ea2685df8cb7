package normalization

import "strings"

// ParseInputString trims surrounding whitespace and collapses internal runs
// of whitespace to a single space.
func ParseInputString(s string) string {
  return strings.Join(strings.Fields(s), " ")
}

// ParseEmail lowercases and trims an email address for storage/lookup.
func ParseEmail(s string) string {
  return strings.ToLower(strings.TrimSpace(s))
}

// ParseShiftDate validates a YYYY-MM-DD date string, returning "" when the
// shape is wrong. Shift dates are stored as text so key equality never
// depends on timezones.
func ParseShiftDate(s string) string {
  s = strings.TrimSpace(s)
  if len(s) != 10 || s[4] != '-' || s[7] != '-' {
    return ""
  }
  for i, r := range s {
    if i == 4 || i == 7 {
      continue
    }
    if r < '0' || r > '9' {
      return ""
    }
  }
  return s
}
