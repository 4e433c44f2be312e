package iso20022

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/iso-gateway/internal/xrpl"
)

func paymentTx(amount string) *xrpl.Transaction {
	return &xrpl.Transaction{
		TransactionType: "Payment",
		Account:         "rDEBTOR123",
		Destination:     "rCREDITOR456",
		Amount:          json.RawMessage(amount),
		Hash:            "ABCDEF1234567890",
	}
}

func TestMapDropsAmountConversion(t *testing.T) {
	m := NewMapper()

	rec, err := m.Map(paymentTx(`"15000000"`))
	require.NoError(t, err)

	assert.Equal(t, "15", rec.InstructedAmount.Value)
	assert.Equal(t, "HCT", rec.InstructedAmount.Currency)
	assert.Equal(t, "15", rec.ControlSum)
}

func TestMapDropsAmountFractional(t *testing.T) {
	m := NewMapper()

	rec, err := m.Map(paymentTx(`"1500001"`))
	require.NoError(t, err)

	assert.Equal(t, "1.500001", rec.InstructedAmount.Value)
}

func TestMapIssuedAmountPassthrough(t *testing.T) {
	m := NewMapper()

	rec, err := m.Map(paymentTx(`{"currency":"HCT","value":"42.50","issuer":"rISSUER"}`))
	require.NoError(t, err)

	assert.Equal(t, "42.50", rec.InstructedAmount.Value)
	assert.Equal(t, "HCT", rec.InstructedAmount.Currency)
}

func TestMapIssuedAmountDefaultCurrency(t *testing.T) {
	m := NewMapper()

	rec, err := m.Map(paymentTx(`{"value":"9.99"}`))
	require.NoError(t, err)

	assert.Equal(t, "HCT", rec.InstructedAmount.Currency)
}

func TestMapMalformedAmount(t *testing.T) {
	m := NewMapper()

	cases := []struct {
		name   string
		amount string
	}{
		{"absent", ""},
		{"non-integer drops", `"15.5"`},
		{"not a number", `"abc"`},
		{"unknown object shape", `{"foo":"bar"}`},
		{"boolean", `true`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := paymentTx(tc.amount)
			if tc.amount == "" {
				tx.Amount = nil
			}

			_, err := m.Map(tx)
			require.Error(t, err)
			var malformed *MalformedAmountError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestMapDeterministicIdentifiers(t *testing.T) {
	m := NewMapper()
	tx := paymentTx(`"1000000"`)

	first, err := m.Map(tx)
	require.NoError(t, err)
	second, err := m.Map(tx)
	require.NoError(t, err)

	assert.Equal(t, first.MessageID, second.MessageID)
	assert.Equal(t, first.InstructionID, second.InstructionID)
	assert.Equal(t, first.EndToEndID, second.EndToEndID)
	assert.Equal(t, first.InstructedAmount, second.InstructedAmount)

	// The three identifiers derive from the same hash.
	assert.Equal(t, first.MessageID, first.EndToEndID)
}

func TestMapIdentifierTruncation(t *testing.T) {
	m := NewMapper()
	tx := paymentTx(`"1000000"`)
	tx.Hash = "AAAA-BBBB-CCCC-DDDD-EEEE-FFFF-0000-1111-2222"

	rec, err := m.Map(tx)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(rec.MessageID), 35)
	assert.NotContains(t, rec.MessageID, "-")
	assert.Equal(t, "AAAABBBBCCCCDDDDEEEEFFFF00001111222", rec.MessageID)
}

func TestMapMissingHashGeneratesIdentifier(t *testing.T) {
	m := NewMapper()
	tx := paymentTx(`"1000000"`)
	tx.Hash = ""

	rec, err := m.Map(tx)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.MessageID)
	assert.LessOrEqual(t, len(rec.MessageID), 35)
	assert.NotContains(t, rec.MessageID, "-")
}

func TestMapMemoDecoding(t *testing.T) {
	m := NewMapper()
	tx := paymentTx(`"1000000"`)
	tx.Memos = []xrpl.MemoWrapper{
		{Memo: xrpl.Memo{MemoData: "54657374207061796d656e74"}},
	}

	rec, err := m.Map(tx)
	require.NoError(t, err)

	assert.Equal(t, "Test payment", rec.RemittanceInformation.Unstructured)
}

func TestMapMemoFallback(t *testing.T) {
	m := NewMapper()
	tx := paymentTx(`"1000000"`)

	rec, err := m.Map(tx)
	require.NoError(t, err)

	assert.Contains(t, rec.RemittanceInformation.Unstructured, tx.Hash)
}

func TestMapMemoDecodeErrors(t *testing.T) {
	m := NewMapper()

	cases := []struct {
		name string
		data string
	}{
		{"invalid hex", "zzzz"},
		{"invalid utf8", "ff"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := paymentTx(`"1000000"`)
			tx.Memos = []xrpl.MemoWrapper{{Memo: xrpl.Memo{MemoData: tc.data}}}

			_, err := m.Map(tx)
			require.Error(t, err)
			var decodeErr *MemoDecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestMapPartySynthesis(t *testing.T) {
	m := NewMapper()

	rec, err := m.Map(paymentTx(`"1000000"`))
	require.NoError(t, err)

	assert.Equal(t, "rDEBTOR1", rec.Debtor.Name)
	assert.Equal(t, "rDEBTOR123", rec.Debtor.Identification)
	assert.Equal(t, "rCREDITO", rec.Creditor.Name)
	assert.Equal(t, "ZZ", rec.Debtor.Address.Country)
	assert.Equal(t, "1", rec.NumberOfTransactions)
	assert.Equal(t, "SLEV", rec.ChargeBearer)
	assert.Equal(t, "CRYP", rec.PurposeCode)
}

func TestMapCustomNameResolver(t *testing.T) {
	m := NewMapper()
	m.Names = func(id string) string { return "resolved:" + id }

	rec, err := m.Map(paymentTx(`"1000000"`))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.Debtor.Name, "resolved:"))
}

func TestMapLongMemoTruncated(t *testing.T) {
	m := NewMapper()
	tx := paymentTx(`"1000000"`)
	// 150 'A' characters, hex-encoded
	tx.Memos = []xrpl.MemoWrapper{{Memo: xrpl.Memo{MemoData: strings.Repeat("41", 150)}}}

	rec, err := m.Map(tx)
	require.NoError(t, err)

	assert.Len(t, rec.RemittanceInformation.Unstructured, 140)
}

func TestMapLongMemoTruncatedOnRuneBoundary(t *testing.T) {
	m := NewMapper()
	tx := paymentTx(`"1000000"`)
	// 139 'A' characters followed by a euro sign: truncation by bytes would
	// cut the multibyte rune in half.
	payload := strings.Repeat("41", 139) + hex.EncodeToString([]byte("€€"))
	tx.Memos = []xrpl.MemoWrapper{{Memo: xrpl.Memo{MemoData: payload}}}

	rec, err := m.Map(tx)
	require.NoError(t, err)

	text := rec.RemittanceInformation.Unstructured
	assert.True(t, utf8.ValidString(text))
	assert.Len(t, []rune(text), 140)
	assert.Equal(t, "A€", text[138:])
}
