package service

import (
	"strings"
	"testing"

	"github.com/subwatch/subwatch/internal/detect"
	"github.com/subwatch/subwatch/internal/models"
	"github.com/subwatch/subwatch/internal/statement"
)

func TestBuildTransactionsFiltersCredits(t *testing.T) {
	rows := []statement.RawRow{
		{Date: "2024-01-01", Description: "NETFLIX.COM", Amount: 15.99},
		{Date: "2024-01-02", Description: "REFUND NETFLIX.COM", Amount: -15.99},
		{Date: "2024-01-03", Description: "ZERO HOLD", Amount: 0},
		{Date: "2024-01-04", Description: "SPOTIFY", Amount: 9.99},
	}

	txs := BuildTransactions(rows)
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].ID != "tx-1" || txs[1].ID != "tx-2" {
		t.Errorf("ids not sequential per run: %s, %s", txs[0].ID, txs[1].ID)
	}
	if txs[0].Merchant != "NETFLIX.COM" || txs[1].Merchant != "SPOTIFY" {
		t.Errorf("wrong merchants: %s, %s", txs[0].Merchant, txs[1].Merchant)
	}
}

func TestAnalyzeDetectsMonthlySubscription(t *testing.T) {
	content := strings.Join([]string{
		"Date,Description,Amount",
		"2024-01-01,NETFLIX.COM,15.99",
		"2024-02-01,NETFLIX.COM,15.99",
		"2024-03-03,NETFLIX.COM,15.99",
		"2024-04-01,NETFLIX.COM,15.99",
	}, "\n")

	report, err := Analyze(content, FormatCSV, detect.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TransactionsProcessed != 4 {
		t.Errorf("transactions processed: got %d, want 4", report.TransactionsProcessed)
	}
	if len(report.ParseErrors) != 0 {
		t.Errorf("parse errors: got %v, want none", report.ParseErrors)
	}
	if report.Detected != 1 || len(report.Subscriptions) != 1 {
		t.Fatalf("detected: got %d subscriptions, want 1", len(report.Subscriptions))
	}

	s := report.Subscriptions[0]
	if s.Frequency != models.FrequencyMonthly {
		t.Errorf("frequency: got %s, want monthly", s.Frequency)
	}
	if s.Occurrences != 4 {
		t.Errorf("occurrences: got %d, want 4", s.Occurrences)
	}
	if s.Amount != 15.99 || s.MonthlyEquivalent != 15.99 {
		t.Errorf("amounts: got %v / %v, want 15.99 / 15.99", s.Amount, s.MonthlyEquivalent)
	}
	if s.NextExpectedCharge != "2024-05-01" {
		t.Errorf("next expected: got %q, want 2024-05-01", s.NextExpectedCharge)
	}
}

func TestAnalyzeTwoOccurrencesYieldsNothing(t *testing.T) {
	content := strings.Join([]string{
		"Date,Description,Amount",
		"2024-01-01,NETFLIX.COM,15.99",
		"2024-02-01,NETFLIX.COM,15.99",
	}, "\n")

	report, err := Analyze(content, FormatCSV, detect.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TransactionsProcessed != 2 {
		t.Errorf("transactions processed: got %d, want 2", report.TransactionsProcessed)
	}
	if len(report.ParseErrors) != 0 {
		t.Errorf("no pattern is not an error, got %v", report.ParseErrors)
	}
	if report.Detected != 0 {
		t.Errorf("detected: got %d, want 0", report.Detected)
	}
}

func TestAnalyzeRefundsAreNotOccurrences(t *testing.T) {
	// Third occurrence is a credit; without it only two debits remain, so
	// no subscription may be detected.
	content := strings.Join([]string{
		"Date,Description,Amount,Type",
		"2024-01-01,NETFLIX.COM,15.99,DEBIT",
		"2024-02-01,NETFLIX.COM,15.99,DEBIT",
		"2024-03-01,NETFLIX.COM,15.99,CREDIT",
	}, "\n")

	report, err := Analyze(content, FormatCSV, detect.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TransactionsProcessed != 2 {
		t.Errorf("transactions processed: got %d, want 2", report.TransactionsProcessed)
	}
	if report.Detected != 0 {
		t.Errorf("a refund must not complete a recurring pattern, got %d", report.Detected)
	}
}

func TestAnalyzeCollectsRowErrors(t *testing.T) {
	content := strings.Join([]string{
		"Date,Description,Amount",
		"2024-01-01,NETFLIX.COM,15.99",
		"garbage,NETFLIX.COM,15.99",
	}, "\n")

	report, err := Analyze(content, FormatCSV, detect.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.ParseErrors) != 1 || !strings.Contains(report.ParseErrors[0], "garbage") {
		t.Errorf("parse errors: got %v", report.ParseErrors)
	}
	if report.TransactionsProcessed != 1 {
		t.Errorf("transactions processed: got %d, want 1", report.TransactionsProcessed)
	}
}

func TestAnalyzeUnsupportedFormat(t *testing.T) {
	if _, err := Analyze("anything", "qif", detect.DefaultConfig()); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestAnalyzeOFX(t *testing.T) {
	content := `<OFX><BANKMSGSRSV1><STMTTRNRS><STMTRS><BANKTRANLIST>
		<STMTTRN><DTPOSTED>20240101</DTPOSTED><TRNAMT>-9.99</TRNAMT><NAME>SPOTIFY</NAME></STMTTRN>
		<STMTTRN><DTPOSTED>20240201</DTPOSTED><TRNAMT>-9.99</TRNAMT><NAME>SPOTIFY</NAME></STMTTRN>
		<STMTTRN><DTPOSTED>20240301</DTPOSTED><TRNAMT>-9.99</TRNAMT><NAME>SPOTIFY</NAME></STMTTRN>
	</BANKTRANLIST></STMTRS></STMTTRNRS></BANKMSGSRSV1></OFX>`

	report, err := Analyze(content, FormatOFX, detect.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TransactionsProcessed != 3 {
		t.Errorf("transactions processed: got %d, want 3", report.TransactionsProcessed)
	}
	if report.Detected != 1 {
		t.Fatalf("detected: got %d, want 1", report.Detected)
	}
	if report.Subscriptions[0].Frequency != models.FrequencyMonthly {
		t.Errorf("frequency: got %s, want monthly", report.Subscriptions[0].Frequency)
	}
}
