package sequence

import "sort"

// SortAlphanumeric sorts ids treating runs of digits as numbers, so
// locus2 sorts before locus10.
func SortAlphanumeric(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return CompareAlphanumeric(ids[i], ids[j]) < 0
	})
}

// CompareAlphanumeric compares two strings segment by segment, where a
// segment is either a maximal run of digits or a single non-digit byte.
// Digit runs are compared by numeric value.
func CompareAlphanumeric(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			numA, nextI := digitRun(a, i)
			numB, nextJ := digitRun(b, j)
			if cmp := compareDigits(numA, numB); cmp != 0 {
				return cmp
			}
			i, j = nextI, nextJ
			continue
		}
		if a[i] != b[j] {
			if a[i] < b[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	}
	return 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// digitRun returns the digit run starting at index start with leading
// zeros trimmed, and the index just past the run.
func digitRun(s string, start int) (string, int) {
	end := start
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	run := s[start:end]
	for len(run) > 1 && run[0] == '0' {
		run = run[1:]
	}
	return run, end
}

// compareDigits compares two zero-trimmed digit runs numerically: the
// longer run is the larger number, equal lengths compare as strings.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
