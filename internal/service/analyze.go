package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/subwatch/subwatch/internal/detect"
	"github.com/subwatch/subwatch/internal/integrations/ofx"
	"github.com/subwatch/subwatch/internal/models"
	"github.com/subwatch/subwatch/internal/statement"
)

// Statement formats accepted by AnalyzeUpload.
const (
	FormatCSV = "csv"
	FormatOFX = "ofx"
)

// BuildTransactions wraps parsed rows into transactions for the detector:
// debits only (credits and refunds never count as occurrences), with
// synthetic ids unique within this run, in row order.
func BuildTransactions(rows []statement.RawRow) []models.Transaction {
	var txs []models.Transaction
	for _, r := range rows {
		if r.Amount <= 0 {
			continue
		}
		txs = append(txs, models.Transaction{
			ID:             fmt.Sprintf("tx-%d", len(txs)+1),
			Date:           r.Date,
			Merchant:       r.Description,
			Amount:         r.Amount,
			RawDescription: r.Description,
		})
	}
	return txs
}

// Analyze runs the full detection pipeline over one statement upload. Pure
// function of its inputs: parse, filter to debits, group, detect.
func Analyze(content, format string, cfg detect.Config) (*models.AnalyzeReport, error) {
	var parsed statement.ParseResult
	switch format {
	case FormatOFX:
		parsed = ofx.Parse(content)
	case FormatCSV, "":
		parsed = statement.Parse(content)
	default:
		return nil, fmt.Errorf("unsupported statement format: %q", format)
	}

	transactions := BuildTransactions(parsed.Rows)
	subscriptions := detect.Detect(transactions, cfg)

	parseErrors := parsed.Errors
	if parseErrors == nil {
		parseErrors = []string{}
	}
	if subscriptions == nil {
		subscriptions = []models.DetectedSubscription{}
	}

	return &models.AnalyzeReport{
		TransactionsProcessed: len(transactions),
		ParseErrors:           parseErrors,
		Detected:              len(subscriptions),
		Subscriptions:         subscriptions,
	}, nil
}

// AnalyzeUpload runs detection for the authenticated user and persists
// the results: detected subscriptions are upserted by (user, normalized
// merchant) and one audit row is recorded for the run.
func (s *Service) AnalyzeUpload(ctx context.Context, content, format string) (*models.AnalyzeReport, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = FormatCSV
	}

	report, err := Analyze(content, format, s.DetectorConfig())
	if err != nil {
		return nil, err
	}

	for i := range report.Subscriptions {
		if err := s.repo.UpsertSubscription(userID, &report.Subscriptions[i]); err != nil {
			// A failed upsert loses persistence, not the analysis; the
			// caller still gets the detection result.
			s.log.Errorf("Failed to upsert subscription %q for user %d: %v",
				report.Subscriptions[i].NormalizedMerchant, userID, err)
		}
	}

	upload := &models.StatementUpload{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Format:                format,
		TransactionsProcessed: report.TransactionsProcessed,
		ParseErrorCount:       len(report.ParseErrors),
		Detected:              report.Detected,
	}
	if err := s.repo.CreateUpload(upload); err != nil {
		s.log.Errorf("Failed to record upload for user %d: %v", userID, err)
	}
	report.UploadID = upload.ID

	s.log.Infof("Analyzed statement for user %d: %d transactions, %d subscriptions, %d parse errors",
		userID, report.TransactionsProcessed, report.Detected, len(report.ParseErrors))
	return report, nil
}
