package nfe

import (
	"strings"

	"github.com/rezonia/nfe-converter/internal/format"
	"github.com/rezonia/nfe-converter/internal/model"
)

const accessKeyDigits = 44

// Report describes the identity of one document and the problems found in it
type Report struct {
	IsInvoice      bool
	Number         string
	AccessKey      string
	IssuerTaxID    string
	RecipientTaxID string
	Items          int
	Errors         []*model.ValidationError
	Warnings       []string
}

// Valid reports whether no error was found
func (r *Report) Valid() bool {
	return r.IsInvoice && len(r.Errors) == 0
}

// Inspect checks the access key, tax ids and required fields of a document.
// Malformed XML returns a *model.ParseError; a document without infNFe
// yields a report with IsInvoice false.
func Inspect(data []byte, source string) (*Report, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, model.NewParseError(source, "xml", "malformed XML document", err)
	}

	r := &Report{}
	invoice := FindInvoice(doc)
	if invoice == nil {
		r.Errors = append(r.Errors, model.NewValidationError(InvoiceTag, nil, "present", model.ErrNotInvoice.Error()))
		return r, nil
	}

	r.IsInvoice = true
	r.Number = strings.TrimSpace(Resolve(invoice, "ide/nNF"))
	r.AccessKey = format.AccessKey(invoice.SelectAttrValue(AccessKeyAttr, ""))
	r.IssuerTaxID = Resolve(invoice, "emit/CNPJ|emit/CPF")
	r.RecipientTaxID = Resolve(invoice, "dest/CNPJ|dest/CPF")
	r.Items = len(FindItems(invoice))

	if r.Number == "" {
		r.Errors = append(r.Errors, model.NewValidationError("ide/nNF", nil, "required", "missing invoice number"))
	}

	switch {
	case r.AccessKey == "":
		r.Errors = append(r.Errors, model.NewValidationError("@Id", nil, "required", "missing access key"))
	case len(r.AccessKey) != accessKeyDigits || format.Digits(r.AccessKey) != r.AccessKey:
		r.Errors = append(r.Errors, model.NewValidationError("@Id", r.AccessKey, "length", "access key must have 44 digits"))
	case !format.ValidAccessKey(r.AccessKey):
		r.Errors = append(r.Errors, model.NewValidationError("@Id", r.AccessKey, "mod11", "access key check digit mismatch"))
	}

	if r.IssuerTaxID == "" {
		r.Errors = append(r.Errors, model.NewValidationError("emit", nil, "required", "missing issuer CNPJ/CPF"))
	} else if !validTaxID(r.IssuerTaxID) {
		r.Errors = append(r.Errors, model.NewValidationError("emit", r.IssuerTaxID, "check_digit", "invalid issuer CNPJ/CPF"))
	}

	if r.RecipientTaxID == "" {
		r.Warnings = append(r.Warnings, "recipient has no CNPJ/CPF")
	} else if !validTaxID(r.RecipientTaxID) {
		r.Errors = append(r.Errors, model.NewValidationError("dest", r.RecipientTaxID, "check_digit", "invalid recipient CNPJ/CPF"))
	}

	if r.Items == 0 {
		r.Warnings = append(r.Warnings, "document has no items")
	}
	if strings.TrimSpace(Resolve(invoice, "total/ICMSTot/vNF")) == "" {
		r.Warnings = append(r.Warnings, "missing invoice total")
	}
	return r, nil
}

func validTaxID(raw string) bool {
	switch d := format.Digits(raw); len(d) {
	case 14:
		return format.ValidCNPJ(d)
	case 11:
		return format.ValidCPF(d)
	default:
		return false
	}
}
