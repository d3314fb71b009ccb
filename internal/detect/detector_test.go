package detect

import (
	"testing"

	"github.com/subwatch/subwatch/internal/models"
)

func chargeAt(id, date string, amount float64) models.Transaction {
	return models.Transaction{ID: id, Date: date, Merchant: "NETFLIX.COM", Amount: amount}
}

func TestClassifyIntervalBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		days float64
		want models.Frequency
		ok   bool
	}{
		{5, "", false},
		{6, models.FrequencyWeekly, true},
		{8, models.FrequencyWeekly, true},
		{9, "", false},
		{27, "", false},
		{28, models.FrequencyMonthly, true},
		{33, models.FrequencyMonthly, true},
		{34, "", false},
		{354, "", false},
		{355, models.FrequencyYearly, true},
		{375, models.FrequencyYearly, true},
		{376, "", false},
	}

	for _, tt := range tests {
		got, ok := classifyInterval(tt.days, cfg)
		if ok != tt.ok || got != tt.want {
			t.Errorf("classifyInterval(%v): got (%q, %v), want (%q, %v)", tt.days, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAmountsMatch(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{100.00, 101.99, true},
		{100.00, 102.05, false},
		{0, 0, true},
		{0, 0.01, false},
		{15.99, 15.99, true},
		{15.99, 16.20, true},  // ~1.3% of the larger
		{15.99, 16.99, false}, // ~5.9%
	}

	for _, tt := range tests {
		if got := amountsMatch(tt.a, tt.b, 0.02); got != tt.want {
			t.Errorf("amountsMatch(%v, %v): got %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		amount float64
		freq   models.Frequency
		want   float64
	}{
		{12, models.FrequencyWeekly, 52},
		{15.99, models.FrequencyMonthly, 15.99},
		{120, models.FrequencyYearly, 10},
	}

	for _, tt := range tests {
		if got := monthlyEquivalent(tt.amount, tt.freq); got != tt.want {
			t.Errorf("monthlyEquivalent(%v, %s): got %v, want %v", tt.amount, tt.freq, got, tt.want)
		}
	}
}

func TestAddDays(t *testing.T) {
	if got := addDays("2024-04-01", 30); got != "2024-05-01" {
		t.Errorf("got %q, want 2024-05-01", got)
	}
	if got := addDays("2024-02-28", 1); got != "2024-02-29" {
		t.Errorf("leap year: got %q, want 2024-02-29", got)
	}
}

func TestDetectMonthlySubscription(t *testing.T) {
	txs := []models.Transaction{
		chargeAt("1", "2024-01-01", 15.99),
		chargeAt("2", "2024-02-01", 15.99),
		chargeAt("3", "2024-03-03", 15.99),
		chargeAt("4", "2024-04-01", 15.99),
	}

	subs := Detect(txs, DefaultConfig())
	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}

	s := subs[0]
	if s.Frequency != models.FrequencyMonthly {
		t.Errorf("frequency: got %s, want monthly", s.Frequency)
	}
	if s.Occurrences != 4 {
		t.Errorf("occurrences: got %d, want 4", s.Occurrences)
	}
	if s.Amount != 15.99 {
		t.Errorf("amount: got %v, want 15.99", s.Amount)
	}
	if s.MonthlyEquivalent != 15.99 {
		t.Errorf("monthly equivalent: got %v, want 15.99", s.MonthlyEquivalent)
	}
	if s.MerchantName != "NETFLIX.COM" {
		t.Errorf("merchant name: got %q", s.MerchantName)
	}
	if s.NormalizedMerchant != "netflix com" {
		t.Errorf("normalized merchant: got %q", s.NormalizedMerchant)
	}
	if s.LastChargeDate != "2024-04-01" {
		t.Errorf("last charge: got %q", s.LastChargeDate)
	}
	// Gaps 31, 31, 29: mean 30.33, rounds to 30.
	if s.IntervalDays != 30 {
		t.Errorf("interval days: got %d, want 30", s.IntervalDays)
	}
	if s.NextExpectedCharge != "2024-05-01" {
		t.Errorf("next expected: got %q, want 2024-05-01", s.NextExpectedCharge)
	}
	wantIDs := []string{"1", "2", "3", "4"}
	if len(s.TransactionIDs) != len(wantIDs) {
		t.Fatalf("transaction ids: got %v", s.TransactionIDs)
	}
	for i, id := range wantIDs {
		if s.TransactionIDs[i] != id {
			t.Errorf("transaction ids out of date order: got %v", s.TransactionIDs)
		}
	}
}

func TestDetectTwoOccurrencesIsSilent(t *testing.T) {
	txs := []models.Transaction{
		chargeAt("1", "2024-01-01", 15.99),
		chargeAt("2", "2024-02-01", 15.99),
		// Unrelated merchant to get past the global minimum-size gate.
		{ID: "3", Date: "2024-02-15", Merchant: "ONE OFF STORE", Amount: 42},
	}

	if subs := Detect(txs, DefaultConfig()); len(subs) != 0 {
		t.Errorf("got %d subscriptions, want 0", len(subs))
	}
}

func TestDetectRecurrenceRejectsInconsistentGaps(t *testing.T) {
	// Gaps 30, 30, 45: mean 35 is in no band, and the 45 gap would break
	// strict consistency even if it were.
	group := []models.Transaction{
		chargeAt("1", "2024-01-01", 9.99),
		chargeAt("2", "2024-01-31", 9.99),
		chargeAt("3", "2024-03-01", 9.99),
		chargeAt("4", "2024-04-15", 9.99),
	}

	if sub := detectRecurrence(group, "NETFLIX.COM", DefaultConfig()); sub != nil {
		t.Errorf("got %+v, want nil", sub)
	}
}

func TestDetectRecurrenceStrictConsistency(t *testing.T) {
	// Mean lands in the monthly band but one gap (40) falls outside it.
	group := []models.Transaction{
		chargeAt("1", "2024-01-01", 9.99),
		chargeAt("2", "2024-01-29", 9.99),
		chargeAt("3", "2024-02-26", 9.99),
		chargeAt("4", "2024-04-06", 9.99),
	}
	// Gaps 28, 28, 40: mean 32 is monthly, 40 is not.
	if sub := detectRecurrence(group, "NETFLIX.COM", DefaultConfig()); sub != nil {
		t.Errorf("got %+v, want nil", sub)
	}
}

func TestDetectRecurrenceDominantAmount(t *testing.T) {
	// Three charges at 9.99 dominate; the 49.99 outlier is excluded from
	// the recurring set but does not block detection.
	group := []models.Transaction{
		chargeAt("1", "2024-01-01", 9.99),
		chargeAt("2", "2024-02-01", 9.99),
		chargeAt("3", "2024-02-15", 49.99),
		chargeAt("4", "2024-03-01", 9.99),
	}

	sub := detectRecurrence(group, "NETFLIX.COM", DefaultConfig())
	if sub == nil {
		t.Fatal("got nil, want a subscription")
	}
	if sub.Amount != 9.99 {
		t.Errorf("amount: got %v, want 9.99", sub.Amount)
	}
	if sub.Occurrences != 3 {
		t.Errorf("occurrences: got %d, want 3", sub.Occurrences)
	}
	wantIDs := []string{"1", "2", "4"}
	for i, id := range wantIDs {
		if sub.TransactionIDs[i] != id {
			t.Fatalf("transaction ids: got %v, want %v", sub.TransactionIDs, wantIDs)
		}
	}
}

func TestDetectRecurrenceAmountWithinTolerance(t *testing.T) {
	// 15.99 and 16.20 land in one bucket under the 2% tolerance.
	group := []models.Transaction{
		chargeAt("1", "2024-01-01", 15.99),
		chargeAt("2", "2024-02-01", 16.20),
		chargeAt("3", "2024-03-01", 15.99),
	}

	sub := detectRecurrence(group, "NETFLIX.COM", DefaultConfig())
	if sub == nil {
		t.Fatal("got nil, want a subscription")
	}
	// Bucket representative is the first-seen amount.
	if sub.Amount != 15.99 {
		t.Errorf("amount: got %v, want 15.99", sub.Amount)
	}
}

func TestDetectRecurrenceNoDominantAmount(t *testing.T) {
	group := []models.Transaction{
		chargeAt("1", "2024-01-01", 10),
		chargeAt("2", "2024-02-01", 20),
		chargeAt("3", "2024-03-01", 30),
		chargeAt("4", "2024-04-01", 40),
	}

	if sub := detectRecurrence(group, "NETFLIX.COM", DefaultConfig()); sub != nil {
		t.Errorf("got %+v, want nil", sub)
	}
}

func TestDetectWeeklyAndYearly(t *testing.T) {
	weekly := []models.Transaction{
		chargeAt("1", "2024-01-01", 5.00),
		chargeAt("2", "2024-01-08", 5.00),
		chargeAt("3", "2024-01-15", 5.00),
		chargeAt("4", "2024-01-22", 5.00),
	}
	subs := Detect(weekly, DefaultConfig())
	if len(subs) != 1 || subs[0].Frequency != models.FrequencyWeekly {
		t.Fatalf("weekly: got %v", subs)
	}
	if eq := subs[0].MonthlyEquivalent; eq < 21.6 || eq > 21.7 {
		t.Errorf("weekly monthly equivalent: got %v, want ~21.67", eq)
	}

	yearly := []models.Transaction{
		chargeAt("1", "2021-06-15", 120),
		chargeAt("2", "2022-06-15", 120),
		chargeAt("3", "2023-06-15", 120),
	}
	subs = Detect(yearly, DefaultConfig())
	if len(subs) != 1 || subs[0].Frequency != models.FrequencyYearly {
		t.Fatalf("yearly: got %v", subs)
	}
	if subs[0].MonthlyEquivalent != 10 {
		t.Errorf("yearly monthly equivalent: got %v, want 10", subs[0].MonthlyEquivalent)
	}
}

func TestDetectDisplayNameLongestWins(t *testing.T) {
	txs := []models.Transaction{
		{ID: "1", Date: "2024-01-01", Merchant: "NETFLIX.COM", Amount: 15.99},
		{ID: "2", Date: "2024-02-01", Merchant: "NETFLIX.COM 12", Amount: 15.99},
		{ID: "3", Date: "2024-03-01", Merchant: "NETFLIX.COM", Amount: 15.99},
	}

	subs := Detect(txs, DefaultConfig())
	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	if subs[0].MerchantName != "NETFLIX.COM 12" {
		t.Errorf("display name: got %q, want the longest raw merchant", subs[0].MerchantName)
	}
}

func TestDetectFewerThanMinimumTransactionsTotal(t *testing.T) {
	txs := []models.Transaction{
		chargeAt("1", "2024-01-01", 15.99),
		chargeAt("2", "2024-02-01", 15.99),
	}
	if subs := Detect(txs, DefaultConfig()); subs != nil {
		t.Errorf("got %v, want nil", subs)
	}
}

func TestDetectConfigSweep(t *testing.T) {
	// Lowering the minimum occurrences turns a two-charge pattern into a
	// subscription; the constant is a knob, not a hard-coded rule.
	cfg := DefaultConfig()
	cfg.MinOccurrences = 2

	txs := []models.Transaction{
		chargeAt("1", "2024-01-01", 15.99),
		chargeAt("2", "2024-02-01", 15.99),
	}
	subs := Detect(txs, cfg)
	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	if subs[0].Occurrences != 2 {
		t.Errorf("occurrences: got %d, want 2", subs[0].Occurrences)
	}
}
