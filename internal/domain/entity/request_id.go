package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// RequestIDPrefix prefixes every purchase request id
const RequestIDPrefix = "RFQ"

// FirstSequence is the sequence number handed out by an empty store
const FirstSequence = 1001

// FormatRequestID renders an id of the form RFQ-<year>-<sequence>
func FormatRequestID(year, sequence int) string {
	return fmt.Sprintf("%s-%d-%d", RequestIDPrefix, year, sequence)
}

// ParseRequestID splits an id into its year and sequence number
func ParseRequestID(id string) (year, sequence int, err error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != RequestIDPrefix {
		return 0, 0, fmt.Errorf("malformed request id %q", id)
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed year in request id %q: %w", id, err)
	}
	sequence, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed sequence in request id %q: %w", id, err)
	}
	return year, sequence, nil
}

// NextSequence returns the sequence that follows the highest one in use
func NextSequence(highest int) int {
	if highest+1 < FirstSequence {
		return FirstSequence
	}
	return highest + 1
}
