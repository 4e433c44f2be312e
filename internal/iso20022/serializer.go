package iso20022

import "github.com/beevik/etree"

const (
	// placeholderAgentBIC stands in for the debtor/creditor agent: ledger
	// transactions carry no financial-institution routing, but both schemas
	// expect an agent block. The value satisfies the 8-character BIC shape.
	placeholderAgentBIC = "XRPLXX00"

	settlementMethodClearing = "CLRG"
	paymentMethodTransfer    = "TRF"
)

// Serialize renders a canonical payment record as a pretty-printed, UTF-8
// ISO 20022 document for the selected message type. It is a pure function of
// its input and cannot fail for a supported message type; any other selector
// yields UnsupportedMessageTypeError.
func Serialize(rec *CanonicalPaymentRecord, mt MessageType) (string, error) {
	if !mt.Supported() {
		return "", &UnsupportedMessageTypeError{MessageType: mt}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("Document")
	root.CreateAttr("xmlns", mt.Namespace())

	switch mt {
	case Pacs008:
		buildFIToFICreditTransfer(root, rec)
	case Pain001:
		buildCreditTransferInitiation(root, rec)
	}

	doc.Indent(2)
	return doc.WriteToString()
}

// buildFIToFICreditTransfer emits the pacs.008 element tree: group header,
// then a single credit-transfer transaction block with the interbank
// settlement amount.
func buildFIToFICreditTransfer(root *etree.Element, rec *CanonicalPaymentRecord) {
	msg := root.CreateElement("FIToFICstmrCdtTrf")

	hdr := msg.CreateElement("GrpHdr")
	addText(hdr, "MsgId", rec.MessageID)
	addText(hdr, "CreDtTm", rec.CreationDateTime)
	addText(hdr, "NbOfTxs", rec.NumberOfTransactions)
	addText(hdr, "CtrlSum", rec.ControlSum)
	addText(hdr.CreateElement("SttlmInf"), "SttlmMtd", settlementMethodClearing)

	tx := msg.CreateElement("CdtTrfTxInf")

	pmtID := tx.CreateElement("PmtId")
	addText(pmtID, "InstrId", rec.InstructionID)
	addText(pmtID, "EndToEndId", rec.EndToEndID)

	amt := addText(tx, "IntrBkSttlmAmt", rec.InstructedAmount.Value)
	amt.CreateAttr("Ccy", rec.InstructedAmount.Currency)

	addText(tx, "ChrgBr", rec.ChargeBearer)

	buildParty(tx, "Dbtr", rec.Debtor)
	buildAccount(tx, "DbtrAcct", rec.DebtorAccount)
	buildAgent(tx, "DbtrAgt")
	buildAgent(tx, "CdtrAgt")
	buildParty(tx, "Cdtr", rec.Creditor)
	buildAccount(tx, "CdtrAcct", rec.CreditorAccount)

	if rec.PurposeCode != "" {
		addText(tx.CreateElement("Purp"), "Cd", rec.PurposeCode)
	}
	if rec.RemittanceInformation.Unstructured != "" {
		addText(tx.CreateElement("RmtInf"), "Ustrd", rec.RemittanceInformation.Unstructured)
	}
}

// buildCreditTransferInitiation emits the pain.001 element tree: group
// header, one payment-information block, one transaction with the instructed
// amount.
func buildCreditTransferInitiation(root *etree.Element, rec *CanonicalPaymentRecord) {
	msg := root.CreateElement("CstmrCdtTrfInitn")

	hdr := msg.CreateElement("GrpHdr")
	addText(hdr, "MsgId", rec.MessageID)
	addText(hdr, "CreDtTm", rec.CreationDateTime)
	addText(hdr, "NbOfTxs", rec.NumberOfTransactions)
	addText(hdr, "CtrlSum", rec.ControlSum)
	addText(hdr.CreateElement("InitgPty"), "Nm", rec.Debtor.Name)

	pmt := msg.CreateElement("PmtInf")
	addText(pmt, "PmtInfId", rec.InstructionID)
	addText(pmt, "PmtMtd", paymentMethodTransfer)
	addText(pmt, "NbOfTxs", rec.NumberOfTransactions)
	addText(pmt, "CtrlSum", rec.ControlSum)
	addText(pmt, "ReqdExctnDt", dateOf(rec.CreationDateTime))

	buildParty(pmt, "Dbtr", rec.Debtor)
	buildAccount(pmt, "DbtrAcct", rec.DebtorAccount)
	buildAgent(pmt, "DbtrAgt")

	tx := pmt.CreateElement("CdtTrfTxInf")
	addText(tx.CreateElement("PmtId"), "EndToEndId", rec.EndToEndID)

	amt := addText(tx.CreateElement("Amt"), "InstdAmt", rec.InstructedAmount.Value)
	amt.CreateAttr("Ccy", rec.InstructedAmount.Currency)

	buildAgent(tx, "CdtrAgt")
	buildParty(tx, "Cdtr", rec.Creditor)
	buildAccount(tx, "CdtrAcct", rec.CreditorAccount)

	if rec.PurposeCode != "" {
		addText(tx.CreateElement("Purp"), "Cd", rec.PurposeCode)
	}
	if rec.RemittanceInformation.Unstructured != "" {
		addText(tx.CreateElement("RmtInf"), "Ustrd", rec.RemittanceInformation.Unstructured)
	}
}

func buildParty(parent *etree.Element, tag string, p Party) {
	el := parent.CreateElement(tag)
	addText(el, "Nm", p.Name)

	addr := el.CreateElement("PstlAdr")
	addText(addr.CreateElement("AdrTp"), "Cd", p.Address.AddressType)
	addText(addr, "Ctry", p.Address.Country)

	addText(el.CreateElement("Id").CreateElement("Othr"), "Id", p.Identification)
}

func buildAccount(parent *etree.Element, tag string, a Account) {
	el := parent.CreateElement(tag)
	addText(el.CreateElement("Id").CreateElement("Othr"), "Id", a.Identification)
	addText(el, "Ccy", a.Currency)
}

func buildAgent(parent *etree.Element, tag string) {
	addText(parent.CreateElement(tag).CreateElement("FinInstnId"), "BICFI", placeholderAgentBIC)
}

func addText(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(value)
	return el
}

// dateOf extracts the date portion of an RFC 3339 timestamp.
func dateOf(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
