// Package ofx converts OFX XML statement exports into the same raw-row
// stream the tabular parser produces, so downstream detection does not
// care which export format the upload used.
package ofx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/subwatch/subwatch/internal/statement"
)

var dtPosted = regexp.MustCompile(`^\d{8}`)

// Parse reads an OFX XML document and returns raw rows in our sign
// convention (positive = money out; OFX uses the opposite). Transactions
// with an unreadable date or amount are skipped and reported, matching the
// tabular parser's failure policy.
func Parse(content string) statement.ParseResult {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil {
		return statement.ParseResult{Errors: []string{fmt.Sprintf("invalid OFX document: %v", err)}}
	}

	// STMTTRN covers both bank (STMTRS) and credit card (CCSTMTRS) lists.
	trns := doc.FindElements("//STMTTRN")
	if len(trns) == 0 {
		return statement.ParseResult{Errors: []string{"no transactions found in OFX document"}}
	}

	result := statement.ParseResult{}
	for i, trn := range trns {
		date := parsePostedDate(childText(trn, "DTPOSTED"))
		if date == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Transaction %d: invalid date %q", i+1, childText(trn, "DTPOSTED")))
			continue
		}

		amountRaw := childText(trn, "TRNAMT")
		amount, err := strconv.ParseFloat(strings.TrimSpace(amountRaw), 64)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Transaction %d: invalid amount %q", i+1, amountRaw))
			continue
		}

		desc := statement.NormalizeDescription(childText(trn, "NAME"))
		if desc == "" {
			desc = statement.NormalizeDescription(childText(trn, "MEMO"))
		}
		if desc == "" {
			desc = "Unknown"
		}

		result.Rows = append(result.Rows, statement.RawRow{
			Date:        date,
			Description: desc,
			// OFX: negative = money out. Flip to our convention.
			Amount: -amount,
			Raw:    []string{date, desc, amountRaw},
		})
	}

	return result
}

// parsePostedDate extracts YYYY-MM-DD from an OFX DTPOSTED value such as
// "20240115120000[-5:EST]".
func parsePostedDate(val string) string {
	m := dtPosted.FindString(strings.TrimSpace(val))
	if m == "" {
		return ""
	}
	return m[0:4] + "-" + m[4:6] + "-" + m[6:8]
}

func childText(parent *etree.Element, tag string) string {
	if el := parent.FindElement("./" + tag); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}
