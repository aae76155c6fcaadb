package domain

import (
	"strconv"
	"strings"
)

type MaterialProgress struct {
	Name        string
	TotalPages  int
	CurrentPage int
}

// ParsePages reads a page count typed by the user. Blank, non-numeric and
// negative input all read as 0.
func ParsePages(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
