package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>AUD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240101120000[0:GMT]
<TRNAMT>650.00
<FITID>2024010101
<NAME>DIRECT CREDIT RENT 12 HARBOUR ST
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-185.00
<FITID>2024011501
<NAME>STRATA LEVY Q1
</STMTTRN>
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>1.23
<FITID>2024013101
<NAME>CREDIT
<MEMO>INTEREST PAID
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseFileBankStatement(t *testing.T) {
	parser := NewParser()
	opts := ImportOptions{OwnerID: "owner-1", PropertyID: strPtr("prop-1")}

	txns, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), opts)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	rent := txns[0]
	assert.Equal(t, "2024010101", rent.ID)
	assert.Equal(t, "owner-1", rent.OwnerID)
	require.NotNil(t, rent.PropertyID)
	assert.Equal(t, "prop-1", *rent.PropertyID)
	assert.Equal(t, "1234567890", rent.AccountID)
	assert.InDelta(t, 650.00, rent.Amount, 0.001)
	assert.Equal(t, "RENT 12 HARBOUR ST", rent.Description)
	assert.Equal(t, 2024, rent.Date.Year())
	assert.Equal(t, time.January, rent.Date.Month())
	assert.NotEmpty(t, rent.Hash)

	// Debits keep their sign.
	levy := txns[1]
	assert.InDelta(t, -185.00, levy.Amount, 0.001)
	assert.Equal(t, "STRATA LEVY Q1", levy.Description)

	// Interest gets a category and falls back to MEMO for its generic NAME.
	interest := txns[2]
	assert.Equal(t, "Interest", interest.Category)
	assert.Equal(t, "INTEREST PAID", interest.Description)
}

func TestParseFileRequiresOwner(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner ID is required")
}

func TestParseFileInvalidContent(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader("not an ofx file"), ImportOptions{OwnerID: "owner-1"})
	require.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "uppercases severity",
			input:    "<SEVERITY>Info</SEVERITY>",
			expected: "<SEVERITY>INFO</SEVERITY>",
		},
		{
			name:     "closes unterminated tags",
			input:    "<BANKTRANLIST\n",
			expected: "<BANKTRANLIST>\n",
		},
		{
			name:     "trims leading blank lines",
			input:    "\n\nOFXHEADER:100",
			expected: "OFXHEADER:100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.preprocessOFX(tt.input))
		})
	}
}

func TestGetAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "1234567890", accounts[0])
}

func strPtr(s string) *string { return &s }
