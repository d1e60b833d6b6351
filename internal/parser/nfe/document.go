package nfe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// NF-e layout constants
const (
	Namespace     = "http://www.portalfiscal.inf.br/nfe"
	InvoiceTag    = "infNFe"
	ItemTag       = "det"
	AccessKeyAttr = "Id"
)

var (
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	errNoRoot = errors.New("document has no root element")
)

// Parse reads data into an etree document. UTF-8, ISO-8859-1 and
// windows-1252 encodings are accepted.
func Parse(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader

	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errNoRoot
	}
	return doc, nil
}

// FindInvoice locates the infNFe node, trying the NF-e namespace first and
// any namespace second. The root element itself is a candidate.
func FindInvoice(doc *etree.Document) *etree.Element {
	if doc == nil || doc.Root() == nil {
		return nil
	}
	root := doc.Root()
	for _, qualified := range []bool{true, false} {
		if matches(root, InvoiceTag, qualified) {
			return root
		}
		if el := firstDescendant(root, InvoiceTag, qualified); el != nil {
			return el
		}
	}
	return nil
}

// FindItems returns the det nodes under invoice in document order
func FindItems(invoice *etree.Element) []*etree.Element {
	if invoice == nil {
		return nil
	}
	if items := allDescendants(invoice, ItemTag, true); len(items) > 0 {
		return items
	}
	return allDescendants(invoice, ItemTag, false)
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1", "l1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
