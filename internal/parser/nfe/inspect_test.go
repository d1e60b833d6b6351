package nfe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/parser/nfe"
)

func rules(r *nfe.Report) []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Field + ":" + e.Rule
	}
	return out
}

func TestInspect_ValidDocument(t *testing.T) {
	r, err := nfe.Inspect(loadFixture(t, "nfe_proc.xml"), "nota.xml")
	require.NoError(t, err)

	assert.True(t, r.IsInvoice)
	assert.True(t, r.Valid(), "errors: %v", rules(r))
	assert.Equal(t, "46", r.Number)
	assert.Equal(t, accessKey, r.AccessKey)
	assert.Equal(t, "11222333000181", r.IssuerTaxID)
	assert.Equal(t, "11444777000161", r.RecipientTaxID)
	assert.Equal(t, 3, r.Items)
	assert.Empty(t, r.Warnings)
}

func TestInspect_CPFRecipient(t *testing.T) {
	r, err := nfe.Inspect(loadFixture(t, "nfe_latin1.xml"), "nfce.xml")
	require.NoError(t, err)

	assert.True(t, r.Valid(), "errors: %v", rules(r))
	assert.Equal(t, "52998224725", r.RecipientTaxID)
	assert.Equal(t, 1, r.Items)
}

func TestInspect_Problems(t *testing.T) {
	tests := []struct {
		name     string
		xml      string
		rules    []string
		warnings int
	}{
		{
			name: "bad check digits",
			xml: `<infNFe Id="NFe35200114200166000187550010000000046550010466">
				<ide><nNF>1</nNF></ide>
				<emit><CNPJ>11222333000182</CNPJ></emit>
				<dest><CPF>52998224724</CPF></dest>
				<det/><total><ICMSTot><vNF>1</vNF></ICMSTot></total>
			</infNFe>`,
			rules:    []string{"@Id:mod11", "emit:check_digit", "dest:check_digit"},
			warnings: 0,
		},
		{
			name:     "missing everything",
			xml:      `<infNFe/>`,
			rules:    []string{"ide/nNF:required", "@Id:required", "emit:required"},
			warnings: 3,
		},
		{
			name: "short access key",
			xml: `<infNFe Id="NFe123"><ide><nNF>1</nNF></ide><emit><CNPJ>11222333000181</CNPJ></emit>
				<dest><CNPJ>11444777000161</CNPJ></dest><det/><total><ICMSTot><vNF>1</vNF></ICMSTot></total></infNFe>`,
			rules:    []string{"@Id:length"},
			warnings: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := nfe.Inspect([]byte(tt.xml), "x.xml")
			require.NoError(t, err)
			assert.True(t, r.IsInvoice)
			assert.False(t, r.Valid())
			assert.Equal(t, tt.rules, rules(r))
			assert.Len(t, r.Warnings, tt.warnings)
		})
	}
}

func TestInspect_NotInvoice(t *testing.T) {
	r, err := nfe.Inspect(loadFixture(t, "cte.xml"), "cte.xml")
	require.NoError(t, err)
	assert.False(t, r.IsInvoice)
	assert.False(t, r.Valid())
	require.Len(t, r.Errors, 1)
	assert.Equal(t, model.ErrNotInvoice.Error(), r.Errors[0].Message)
}

func TestInspect_Malformed(t *testing.T) {
	_, err := nfe.Inspect([]byte("not xml"), "bad.xml")
	var parseErr *model.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
