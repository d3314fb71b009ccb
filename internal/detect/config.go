package detect

// IntervalRange is an inclusive band of day gaps accepted for one cadence.
type IntervalRange struct {
	Min float64
	Max float64
}

// Contains reports whether days falls inside the band.
func (r IntervalRange) Contains(days float64) bool {
	return days >= r.Min && days <= r.Max
}

// Config holds the detector's tunables. One value object is passed through
// the whole run so parameter sweeps in tests stay in one place.
type Config struct {
	// SimilarityThreshold is the minimum merchant-name similarity for two
	// transactions to be considered the same payee.
	SimilarityThreshold float64
	// AmountTolerance is the relative variance allowed between two charges
	// that count as the same amount (0.02 = 2%).
	AmountTolerance float64
	// MinOccurrences is the minimum number of same-amount, same-cadence
	// charges required to call something a subscription.
	MinOccurrences int

	WeeklyRange  IntervalRange
	MonthlyRange IntervalRange
	YearlyRange  IntervalRange

	// TransitiveGrouping switches merchant grouping from the default greedy
	// pivot scan to transitive closure over the similarity relation. This
	// changes which transactions end up grouped on ambiguous inputs; leave
	// it off for compatibility with the pivot behavior.
	TransitiveGrouping bool
}

// DefaultConfig returns the production detector settings.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.75,
		AmountTolerance:     0.02,
		MinOccurrences:      3,
		WeeklyRange:         IntervalRange{Min: 6, Max: 8},
		MonthlyRange:        IntervalRange{Min: 28, Max: 33},
		YearlyRange:         IntervalRange{Min: 355, Max: 375},
	}
}
