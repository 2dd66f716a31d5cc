package services

import (
	"strconv"
	"strings"
)

// NextSeats returns quantity consecutive seat labels following the highest
// numeric label in existing. Non-numeric and non-positive labels are ignored.
func NextSeats(existing []string, quantity int) []string {
	highest := 0
	for _, label := range existing {
		n, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil || n < 1 {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	seats := make([]string, 0, quantity)
	for i := 1; i <= quantity; i++ {
		seats = append(seats, strconv.Itoa(highest+i))
	}
	return seats
}
