package memory

import "fmt"

// Supported consumption tiers, in percent of total physical memory.
const (
	TierLow  = 30
	TierMid  = 50
	TierHigh = 75
)

// ComputeSize returns percentage percent of totalMemory rounded down to a
// multiple of pageSize.  A zero result is a configuration error.
func ComputeSize(percentage, totalMemory, pageSize uint64) (uint64, error) {
	if percentage == 0 || percentage > 100 {
		return 0, &ConfigurationError{
			Reason: fmt.Sprintf("invalid percentage: %v", percentage),
		}
	}
	if pageSize == 0 {
		return 0, &ConfigurationError{Reason: "invalid page size: 0"}
	}

	// floor(total * p / 100) without overflowing on large totals.
	q, r := totalMemory/100, totalMemory%100
	size := q*percentage + r*percentage/100
	size = (size / pageSize) * pageSize
	if size == 0 {
		return 0, &ConfigurationError{
			Reason: fmt.Sprintf("calculated buffer size is zero "+
				"(total %v, %v%%), increase percentage",
				totalMemory, percentage),
		}
	}

	log.Tracef("ComputeSize: total %v percentage %v page %v -> %v",
		totalMemory, percentage, pageSize, size)

	return size, nil
}
