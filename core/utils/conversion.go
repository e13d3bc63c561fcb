package utils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseIDList parses a comma-separated list of integer ids (e.g. "3, 1,3,7").
// Blank tokens are skipped, duplicates are removed and the result is sorted ascending.
// Any token that is not a positive integer is an error.
func ParseIDList(raw string) ([]int, error) {
	seen := make(map[int]struct{})
	ids := make([]int, 0)

	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		id, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", token, err)
		}
		if id <= 0 {
			return nil, fmt.Errorf("invalid id %q: must be positive", token)
		}

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	sort.Ints(ids)
	return ids, nil
}

// JoinIDs formats ids as a comma-separated list, the inverse of ParseIDList.
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
