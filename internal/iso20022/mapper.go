package iso20022

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/iso-gateway/internal/xrpl"
)

const (
	// maxIdentifierLen is the ISO 20022 ceiling for Max35Text identifiers.
	maxIdentifierLen = 35
	// maxRemittanceLen is the ceiling for unstructured remittance (Max140Text).
	maxRemittanceLen = 140

	// dropsPerUnit converts the ledger's smallest denomination to major units.
	dropsPerUnit = 1_000_000

	// nativeCurrency is the currency code used for native-unit (drops) amounts
	// and as the default when an issued amount omits its currency.
	nativeCurrency = "HCT"

	chargeBearerServiceLevel = "SLEV"
	purposeCodeDigitalAsset  = "CRYP"

	// Ledger accounts carry no postal address; parties get a fixed sentinel.
	placeholderAddressType = "ADDR"
	placeholderCountry     = "ZZ"
)

// NameResolver derives a party name from an account identification. The
// default implementation is a placeholder, not identity resolution; a real
// deployment substitutes a registry lookup here.
type NameResolver func(identification string) string

// Mapper builds canonical payment records from raw ledger transactions. It
// performs no network or storage I/O; aside from timestamp and fallback
// identifier generation it is deterministic.
type Mapper struct {
	Names NameResolver

	now func() time.Time
}

// NewMapper creates a mapper with the placeholder name resolver.
func NewMapper() *Mapper {
	return &Mapper{
		Names: placeholderName,
		now:   time.Now,
	}
}

// Map converts a raw ledger transaction into a canonical payment record.
// It fails only when the transaction amount is absent or of an unrecognized
// shape (MalformedAmountError) or when a memo payload cannot be decoded
// (MemoDecodeError).
func (m *Mapper) Map(tx *xrpl.Transaction) (*CanonicalPaymentRecord, error) {
	amount, err := extractAmount(tx.Amount)
	if err != nil {
		return nil, err
	}

	remittance, err := m.remittanceText(tx)
	if err != nil {
		return nil, err
	}

	names := m.Names
	if names == nil {
		names = placeholderName
	}

	rec := &CanonicalPaymentRecord{
		MessageID:        paymentIdentifier(tx.Hash),
		InstructionID:    paymentIdentifier(tx.Hash),
		EndToEndID:       paymentIdentifier(tx.Hash),
		CreationDateTime: m.now().UTC().Format(time.RFC3339),

		NumberOfTransactions: "1",
		ControlSum:           amount.Value,
		InstructedAmount:     amount,

		Debtor: Party{
			Name:           names(tx.Account),
			Identification: tx.Account,
			Address:        placeholderAddress(),
		},
		DebtorAccount: Account{
			Identification: tx.Account,
			Currency:       amount.Currency,
		},
		Creditor: Party{
			Name:           names(tx.Destination),
			Identification: tx.Destination,
			Address:        placeholderAddress(),
		},
		CreditorAccount: Account{
			Identification: tx.Destination,
			Currency:       amount.Currency,
		},

		RemittanceInformation: RemittanceInformation{Unstructured: remittance},
		ChargeBearer:          chargeBearerServiceLevel,
		PurposeCode:           purposeCodeDigitalAsset,
	}

	return rec, nil
}

// paymentIdentifier derives a schema-safe Max35Text identifier from a seed
// string, normally the transaction hash. Separator characters are stripped
// and the result capped at 35 characters, so the same hash always yields the
// same identifier. An empty seed falls back to a random token.
func paymentIdentifier(seed string) string {
	s := seed
	if s == "" {
		s = uuid.NewString()
	}
	s = strings.ReplaceAll(s, "-", "")
	if len(s) > maxIdentifierLen {
		s = s[:maxIdentifierLen]
	}
	return s
}

// extractAmount normalizes the two XRPL amount shapes into a currency and a
// major-unit decimal value. Native amounts arrive as an integer string of
// drops and are divided by 1,000,000 without rounding; issued amounts pass
// their value through unchanged.
func extractAmount(raw json.RawMessage) (Amount, error) {
	if len(raw) == 0 {
		return Amount{}, &MalformedAmountError{Reason: "amount is absent"}
	}

	var drops string
	if err := json.Unmarshal(raw, &drops); err == nil {
		d, err := decimal.NewFromString(drops)
		if err != nil || !d.IsInteger() {
			return Amount{}, &MalformedAmountError{Reason: fmt.Sprintf("%q is not an integer drops value", drops)}
		}
		value := d.Div(decimal.NewFromInt(dropsPerUnit))
		return Amount{Currency: nativeCurrency, Value: value.String()}, nil
	}

	var issued xrpl.IssuedAmount
	if err := json.Unmarshal(raw, &issued); err == nil && issued.Value != "" {
		currency := issued.Currency
		if currency == "" {
			currency = nativeCurrency
		}
		return Amount{Currency: currency, Value: issued.Value}, nil
	}

	return Amount{}, &MalformedAmountError{Reason: "amount is neither a drops string nor a currency/value object"}
}

// remittanceText decodes the first memo's hex payload to UTF-8 text, or
// synthesizes a fallback referencing the transaction hash when no memo is
// present. Undecodable payloads are an error, not something to truncate away.
func (m *Mapper) remittanceText(tx *xrpl.Transaction) (string, error) {
	if len(tx.Memos) > 0 && tx.Memos[0].Memo.MemoData != "" {
		raw, err := hex.DecodeString(tx.Memos[0].Memo.MemoData)
		if err != nil {
			return "", &MemoDecodeError{TxHash: tx.Hash, Reason: "payload is not valid hex"}
		}
		if !utf8.Valid(raw) {
			return "", &MemoDecodeError{TxHash: tx.Hash, Reason: "payload is not valid UTF-8"}
		}
		// Max140Text counts characters, and a byte slice could cut a
		// multibyte rune in half.
		text := string(raw)
		if runes := []rune(text); len(runes) > maxRemittanceLen {
			text = string(runes[:maxRemittanceLen])
		}
		return text, nil
	}
	return fmt.Sprintf("Ledger transaction %s", tx.Hash), nil
}

func placeholderName(identification string) string {
	if len(identification) > 8 {
		return identification[:8]
	}
	return identification
}

func placeholderAddress() PostalAddress {
	return PostalAddress{
		AddressType: placeholderAddressType,
		Country:     placeholderCountry,
	}
}
