package report

import (
	"sort"
	"strconv"
	"strings"

	"ctrlreport/internal/onetrust"
)

// identifierKey derives the numeric sort key of a dotted identifier such
// as "3.2.10". Non-numeric segments compare as zero rather than being
// rejected.
func identifierKey(identifier string) []int {
	parts := strings.Split(identifier, ".")
	key := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			n = 0
		}
		key[i] = n
	}
	return key
}

// compareKeys orders keys segment by segment; a key that is a prefix of a
// longer key sorts first.
func compareKeys(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// sortByIdentifier stable-sorts records by numeric identifier key so that
// "3.10" orders after "3.2". Records with equal keys keep their input order.
func sortByIdentifier(records []onetrust.ControlRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return compareKeys(
			identifierKey(records[i].Control.Identifier),
			identifierKey(records[j].Control.Identifier),
		) < 0
	})
}
