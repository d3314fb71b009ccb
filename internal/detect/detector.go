package detect

import (
	"math"
	"sort"
	"time"

	"github.com/subwatch/subwatch/internal/models"
)

const dateLayout = "2006-01-02"

// amountsMatch reports whether two charges count as the same amount under
// the relative tolerance. Zero matches only zero.
func amountsMatch(a, b, tolerance float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	max := math.Abs(a)
	if math.Abs(b) > max {
		max = math.Abs(b)
	}
	return math.Abs(a-b) <= max*tolerance
}

// classifyInterval maps a day gap onto a cadence, or reports no match when
// the gap falls outside every band.
func classifyInterval(days float64, cfg Config) (models.Frequency, bool) {
	switch {
	case cfg.WeeklyRange.Contains(days):
		return models.FrequencyWeekly, true
	case cfg.MonthlyRange.Contains(days):
		return models.FrequencyMonthly, true
	case cfg.YearlyRange.Contains(days):
		return models.FrequencyYearly, true
	}
	return "", false
}

// rangeFor returns the band belonging to an already classified cadence.
func rangeFor(freq models.Frequency, cfg Config) IntervalRange {
	switch freq {
	case models.FrequencyWeekly:
		return cfg.WeeklyRange
	case models.FrequencyYearly:
		return cfg.YearlyRange
	default:
		return cfg.MonthlyRange
	}
}

// monthlyEquivalent normalizes a charge to a monthly spend figure.
func monthlyEquivalent(amount float64, freq models.Frequency) float64 {
	switch freq {
	case models.FrequencyWeekly:
		return amount * (52.0 / 12.0)
	case models.FrequencyYearly:
		return amount / 12
	default:
		return amount
	}
}

// addDays moves an ISO date forward by the given number of calendar days.
func addDays(isoDate string, days int) string {
	t, err := time.Parse(dateLayout, isoDate)
	if err != nil {
		return isoDate
	}
	return t.AddDate(0, 0, days).Format(dateLayout)
}

// daysBetween returns the rounded day gap between two ISO dates.
func daysBetween(from, to string) float64 {
	a, errA := time.Parse(dateLayout, from)
	b, errB := time.Parse(dateLayout, to)
	if errA != nil || errB != nil {
		return 0
	}
	return math.Round(b.Sub(a).Hours() / 24)
}

// amountBucket is one tolerance bucket of charge amounts. Buckets live in
// an insertion-ordered slice, never a map: tie-breaks between buckets of
// equal count must deterministically favor the earliest-created bucket.
type amountBucket struct {
	amount float64
	count  int
}

// detectRecurrence decides whether one merchant group forms a recurring
// subscription. Returns nil when it does not; a rejected group is not an
// error, it is simply absent from the results.
func detectRecurrence(group []models.Transaction, displayName string, cfg Config) *models.DetectedSubscription {
	if len(group) < cfg.MinOccurrences {
		return nil
	}

	sorted := make([]models.Transaction, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	// Bucket amounts in date order: each charge joins the first existing
	// bucket within tolerance of it, else opens a new one.
	var buckets []amountBucket
	for _, t := range sorted {
		amt := math.Round(t.Amount*100) / 100
		found := false
		for i := range buckets {
			if amountsMatch(amt, buckets[i].amount, cfg.AmountTolerance) {
				buckets[i].count++
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, amountBucket{amount: amt, count: 1})
		}
	}

	// Dominant amount: highest count among buckets reaching the minimum,
	// earliest bucket winning ties.
	bestAmount := 0.0
	bestCount := 0
	for _, b := range buckets {
		if b.count >= cfg.MinOccurrences && b.count > bestCount {
			bestCount = b.count
			bestAmount = b.amount
		}
	}
	if bestCount < cfg.MinOccurrences {
		return nil
	}

	var recurring []models.Transaction
	for _, t := range sorted {
		if amountsMatch(t.Amount, bestAmount, cfg.AmountTolerance) {
			recurring = append(recurring, t)
		}
	}
	if len(recurring) < cfg.MinOccurrences {
		return nil
	}

	gaps := make([]float64, 0, len(recurring)-1)
	for i := 1; i < len(recurring); i++ {
		gaps = append(gaps, daysBetween(recurring[i-1].Date, recurring[i].Date))
	}

	var sum float64
	for _, g := range gaps {
		sum += g
	}
	mean := sum / float64(len(gaps))

	freq, ok := classifyInterval(mean, cfg)
	if !ok {
		return nil
	}

	// Strict consistency: a single gap outside the chosen band disqualifies
	// the whole group, even when the mean looks clean.
	band := rangeFor(freq, cfg)
	for _, g := range gaps {
		if !band.Contains(g) {
			return nil
		}
	}

	intervalDays := int(math.Round(mean))
	lastCharge := recurring[len(recurring)-1].Date

	ids := make([]string, len(recurring))
	for i, t := range recurring {
		ids[i] = t.ID
	}

	return &models.DetectedSubscription{
		MerchantName:       displayName,
		NormalizedMerchant: NormalizeMerchant(displayName),
		Amount:             bestAmount,
		Frequency:          freq,
		IntervalDays:       intervalDays,
		Occurrences:        len(recurring),
		LastChargeDate:     lastCharge,
		NextExpectedCharge: addDays(lastCharge, intervalDays),
		TransactionIDs:     ids,
		MonthlyEquivalent:  monthlyEquivalent(bestAmount, freq),
	}
}

// displayNameFor picks the human-facing name for a group: the longest raw
// merchant string wins, first occurrence breaking ties.
func displayNameFor(group []models.Transaction) string {
	name := ""
	for _, t := range group {
		if len(t.Merchant) > len(name) {
			name = t.Merchant
		}
	}
	if name == "" && len(group) > 0 {
		name = group[0].Merchant
	}
	if name == "" {
		name = "Unknown"
	}
	return name
}

// Detect runs the full detection pass over one upload's transactions:
// group by merchant similarity, then evaluate each group independently.
// Groups with no recurring pattern are dropped silently.
func Detect(transactions []models.Transaction, cfg Config) []models.DetectedSubscription {
	if len(transactions) < cfg.MinOccurrences {
		return nil
	}

	var groups [][]models.Transaction
	if cfg.TransitiveGrouping {
		groups = groupTransitive(transactions, cfg)
	} else {
		groups = groupByMerchant(transactions, cfg)
	}

	var results []models.DetectedSubscription
	for _, group := range groups {
		if sub := detectRecurrence(group, displayNameFor(group), cfg); sub != nil {
			results = append(results, *sub)
		}
	}
	return results
}
