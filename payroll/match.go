/*
match.go - Event-to-employee matching

PURPOSE:
  Maps a shift event (title text + attendee list) to the subset of known
  employees working it. Attendee-email matching is preferred because it is
  exact; title matching is the fallback for events created without invites
  ("Opening - Dana").

MATCH RULES (per employee, first satisfied rule wins):
  1. Any attendee email equals any of the employee's aliases
     (case-insensitive).
  2. Any alias, or the employee's own name, appears in the title as a whole
     word (case-insensitive; a word runs between non-letter/digit characters
     or the ends of the title, so accented names match too).

PROPERTIES:
  - Result preserves the employees list's relative order.
  - Each employee appears at most once, however many aliases match.
  - No match for anyone yields an empty result, not an error.
*/
package payroll

import (
	"regexp"
	"strings"
)

// MatchEmployees returns the ordered subset of employees assigned to a shift
// event, matched by attendee email first, then by whole-word title search.
func MatchEmployees(title string, attendees []Attendee, employees []Employee) []Employee {
	emails := make([]string, 0, len(attendees))
	for _, a := range attendees {
		if a.Email != "" {
			emails = append(emails, strings.ToLower(a.Email))
		}
	}

	var matched []Employee
	for _, emp := range employees {
		if matchesByEmail(emails, emp) || matchesByTitle(title, emp) {
			matched = append(matched, emp)
		}
	}
	return matched
}

func matchesByEmail(emails []string, emp Employee) bool {
	for _, email := range emails {
		for _, alias := range emp.Aliases {
			if email == strings.ToLower(alias) {
				return true
			}
		}
	}
	return false
}

func matchesByTitle(title string, emp Employee) bool {
	if title == "" {
		return false
	}
	for _, alias := range append(append([]string{}, emp.Aliases...), emp.Name) {
		if alias == "" {
			continue
		}
		// \b is ASCII-only in re2; names like "José" need explicit
		// letter/digit boundary classes.
		re, err := regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(alias) + `(?:[^\p{L}\p{N}_]|$)`)
		if err != nil {
			continue
		}
		if re.MatchString(title) {
			return true
		}
	}
	return false
}
