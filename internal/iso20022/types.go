package iso20022

// MessageType identifies one of the supported ISO 20022 message schemas.
type MessageType string

const (
	// Pacs008 is the FI-to-FI customer credit transfer (pacs.008.001.08).
	Pacs008 MessageType = "pacs.008"
	// Pain001 is the customer credit transfer initiation (pain.001.001.09).
	Pain001 MessageType = "pain.001"
)

// Namespace returns the XML namespace bound to the message type's Document root.
func (mt MessageType) Namespace() string {
	switch mt {
	case Pacs008:
		return "urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08"
	case Pain001:
		return "urn:iso:std:iso:20022:tech:xsd:pain.001.001.09"
	}
	return ""
}

// Supported reports whether the message type is one of the two schemas this
// gateway generates.
func (mt MessageType) Supported() bool {
	return mt == Pacs008 || mt == Pain001
}

// Amount is a currency-qualified decimal amount, already rendered as the
// textual value that goes into the XML element.
type Amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

// PostalAddress is the fixed-shape placeholder address attached to ledger
// parties. Ledger accounts carry no postal address, so the mapper fills a
// sentinel country and address type.
type PostalAddress struct {
	AddressType string `json:"address_type"`
	Country     string `json:"country"`
}

// Party identifies a debtor or creditor.
type Party struct {
	Name           string        `json:"name"`
	Identification string        `json:"identification"`
	Address        PostalAddress `json:"address"`
}

// Account identifies a party's account on the ledger.
type Account struct {
	Identification string `json:"identification"`
	Currency       string `json:"currency"`
}

// RemittanceInformation carries unstructured remittance text decoded from the
// transaction's first memo, or a synthesized fallback.
type RemittanceInformation struct {
	Unstructured string `json:"unstructured"`
}

// CanonicalPaymentRecord is the message-type-agnostic representation of a
// payment derived from a ledger transaction. Every field already satisfies
// the target schemas' length and character constraints: truncation and
// sanitization happen in the mapper, never in the serializer.
type CanonicalPaymentRecord struct {
	MessageID        string `json:"message_id"`
	InstructionID    string `json:"instruction_id"`
	EndToEndID       string `json:"end_to_end_id"`
	CreationDateTime string `json:"creation_date_time"`

	NumberOfTransactions string `json:"number_of_transactions"`
	ControlSum           string `json:"control_sum"`
	InstructedAmount     Amount `json:"instructed_amount"`

	Debtor          Party   `json:"debtor"`
	DebtorAccount   Account `json:"debtor_account"`
	Creditor        Party   `json:"creditor"`
	CreditorAccount Account `json:"creditor_account"`

	RemittanceInformation RemittanceInformation `json:"remittance_information"`
	ChargeBearer          string                `json:"charge_bearer"`
	PurposeCode           string                `json:"purpose_code"`
}
