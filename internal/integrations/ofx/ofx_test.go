package ofx

import (
	"strings"
	"testing"
)

const sampleOFX = `<?xml version="1.0" encoding="utf-8"?>
<OFX>
  <BANKMSGSRSV1>
    <STMTTRNRS>
      <STMTRS>
        <BANKTRANLIST>
          <STMTTRN>
            <TRNTYPE>DEBIT</TRNTYPE>
            <DTPOSTED>20240115120000[-5:EST]</DTPOSTED>
            <TRNAMT>-15.99</TRNAMT>
            <NAME>NETFLIX.COM</NAME>
          </STMTTRN>
          <STMTTRN>
            <TRNTYPE>CREDIT</TRNTYPE>
            <DTPOSTED>20240116</DTPOSTED>
            <TRNAMT>200.00</TRNAMT>
            <NAME></NAME>
            <MEMO>PAYROLL DEPOSIT</MEMO>
          </STMTTRN>
          <STMTTRN>
            <TRNTYPE>DEBIT</TRNTYPE>
            <DTPOSTED>bogus</DTPOSTED>
            <TRNAMT>-9.99</TRNAMT>
            <NAME>SPOTIFY</NAME>
          </STMTTRN>
        </BANKTRANLIST>
      </STMTRS>
    </STMTTRNRS>
  </BANKMSGSRSV1>
</OFX>`

func TestParseOFX(t *testing.T) {
	result := Parse(sampleOFX)

	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 (errors: %v)", len(result.Rows), result.Errors)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "bogus") {
		t.Fatalf("got errors %v, want one mentioning the bad date", result.Errors)
	}

	debit := result.Rows[0]
	if debit.Date != "2024-01-15" {
		t.Errorf("date: got %q, want 2024-01-15", debit.Date)
	}
	if debit.Description != "NETFLIX.COM" {
		t.Errorf("description: got %q", debit.Description)
	}
	// OFX -15.99 (money out) becomes +15.99 in our convention.
	if debit.Amount != 15.99 {
		t.Errorf("amount: got %v, want 15.99", debit.Amount)
	}

	credit := result.Rows[1]
	if credit.Amount != -200.00 {
		t.Errorf("credit amount: got %v, want -200", credit.Amount)
	}
	if credit.Description != "PAYROLL DEPOSIT" {
		t.Errorf("memo fallback: got %q", credit.Description)
	}
}

func TestParseOFXNotXML(t *testing.T) {
	result := Parse("Date,Description,Amount\n2024-01-01,X,1.00")
	if len(result.Rows) != 0 || len(result.Errors) != 1 {
		t.Errorf("got %d rows / %d errors, want 0 / 1", len(result.Rows), len(result.Errors))
	}
}

func TestParseOFXNoTransactions(t *testing.T) {
	result := Parse("<OFX><BANKMSGSRSV1></BANKMSGSRSV1></OFX>")
	if len(result.Rows) != 0 || len(result.Errors) != 1 {
		t.Errorf("got %d rows / %d errors, want 0 / 1", len(result.Rows), len(result.Errors))
	}
}
