package transfer

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ParseSelection parses a 1-based selection such as "1,3-4 6" into sorted,
// deduplicated zero-based indices below available. Any bad token fails the
// whole parse.
func ParseSelection(input string, available int) ([]int, error) {
	tokens := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '，' || unicode.IsSpace(r)
	})
	if len(tokens) == 0 {
		return nil, ErrNoSpacesSelected
	}

	seen := make(map[int]struct{})
	for _, token := range tokens {
		lo, hi, err := parseSelectionToken(token)
		if err != nil {
			return nil, &SelectionError{Token: token, Available: available, Err: err}
		}
		if lo < 1 || hi > available {
			return nil, &SelectionError{Token: token, Available: available, Err: ErrSelectionOutOfRange}
		}
		for n := lo; n <= hi; n++ {
			seen[n-1] = struct{}{}
		}
	}

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

func parseSelectionToken(token string) (lo, hi int, err error) {
	start, end, isRange := strings.Cut(token, "-")
	if !isRange {
		n, err := parsePositive(token)
		if err != nil {
			return 0, 0, err
		}
		return n, n, nil
	}

	lo, err = parsePositive(start)
	if err != nil {
		return 0, 0, err
	}
	hi, err = parsePositive(end)
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, ErrInvalidSelectionToken
	}
	return lo, hi, nil
}

func parsePositive(s string) (int, error) {
	if s == "" {
		return 0, ErrInvalidSelectionToken
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidSelectionToken
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Too many digits for an int is still a number, just not one we have.
		return 0, ErrSelectionOutOfRange
	}
	return n, nil
}
