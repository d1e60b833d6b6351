package catalog

import "github.com/rezonia/nfe-converter/internal/format"

// Paths are relative to the infNFe node.

var headerCategories = []Category{
	{
		Name: "Dados da Nota",
		Fields: []Field{
			{ID: InvoiceNumberID, Label: InvoiceNumberLabel, Path: "ide/nNF", Kind: format.KindText},
			{ID: "serie", Label: "Série", Path: "ide/serie", Kind: format.KindText},
			{ID: "data_emissao", Label: "Data Emissão", Path: "ide/dhEmi", Kind: format.KindDate},
			{ID: AccessKeyID, Label: AccessKeyLabel, Path: "@Id", Kind: format.KindText},
			{ID: "modelo", Label: "Modelo", Path: "ide/mod", Kind: format.KindText},
			{ID: "natureza_operacao", Label: "Natureza da Operação", Path: "ide/natOp", Kind: format.KindText},
		},
	},
	{
		Name: "Emitente",
		Fields: []Field{
			{ID: "emit_cnpj", Label: "CNPJ Emitente", Path: "emit/CNPJ", Kind: format.KindCNPJ},
			{ID: "emit_nome", Label: "Nome Emitente", Path: "emit/xNome", Kind: format.KindText},
			{ID: "emit_fantasia", Label: "Nome Fantasia Emitente", Path: "emit/xFant", Kind: format.KindText},
			{ID: "emit_ie", Label: "IE Emitente", Path: "emit/IE", Kind: format.KindText},
			{ID: "emit_uf", Label: "UF Emitente", Path: "emit/enderEmit/UF", Kind: format.KindText},
			{ID: "emit_municipio", Label: "Município Emitente", Path: "emit/enderEmit/xMun", Kind: format.KindText},
		},
	},
	{
		Name: "Destinatário",
		Fields: []Field{
			{ID: "dest_cnpj_cpf", Label: "CNPJ/CPF Destinatário", Path: "dest/CNPJ|dest/CPF", Kind: format.KindTaxID},
			{ID: "dest_nome", Label: "Nome Destinatário", Path: "dest/xNome", Kind: format.KindText},
			{ID: "dest_ie", Label: "IE Destinatário", Path: "dest/IE", Kind: format.KindText},
			{ID: "dest_uf", Label: "UF Destinatário", Path: "dest/enderDest/UF", Kind: format.KindText},
			{ID: "dest_municipio", Label: "Município Destinatário", Path: "dest/enderDest/xMun", Kind: format.KindText},
		},
	},
	{
		Name: "Valores",
		Fields: []Field{
			{ID: "valor_produtos", Label: "Valor Produtos", Path: "total/ICMSTot/vProd", Kind: format.KindCurrency},
			{ID: "valor_frete", Label: "Valor Frete", Path: "total/ICMSTot/vFrete", Kind: format.KindCurrency},
			{ID: "valor_seguro", Label: "Valor Seguro", Path: "total/ICMSTot/vSeg", Kind: format.KindCurrency},
			{ID: "valor_desconto", Label: "Valor Desconto", Path: "total/ICMSTot/vDesc", Kind: format.KindCurrency},
			{ID: "valor_icms", Label: "Valor ICMS", Path: "total/ICMSTot/vICMS", Kind: format.KindCurrency},
			{ID: "valor_ipi", Label: "Valor IPI", Path: "total/ICMSTot/vIPI", Kind: format.KindCurrency},
			{ID: "valor_pis", Label: "Valor PIS", Path: "total/ICMSTot/vPIS", Kind: format.KindCurrency},
			{ID: "valor_cofins", Label: "Valor COFINS", Path: "total/ICMSTot/vCOFINS", Kind: format.KindCurrency},
			{ID: InvoiceTotalID, Label: InvoiceTotalLabel, Path: "total/ICMSTot/vNF", Kind: format.KindCurrency},
		},
	},
}

// Paths are relative to each det node.
var itemFields = []Field{
	{ID: "codigo", Label: "Código", Path: "prod/cProd", Kind: format.KindText},
	{ID: "descricao", Label: "Descrição", Path: "prod/xProd", Kind: format.KindText},
	{ID: "ncm", Label: "NCM", Path: "prod/NCM", Kind: format.KindText},
	{ID: "cfop", Label: "CFOP", Path: "prod/CFOP", Kind: format.KindText},
	{ID: "unidade", Label: "Unidade", Path: "prod/uCom", Kind: format.KindText},
	{ID: "quantidade", Label: "Quantidade", Path: "prod/qCom", Kind: format.KindNumber},
	{ID: "valor_unitario", Label: "Valor Unitário", Path: "prod/vUnCom", Kind: format.KindCurrency},
	{ID: "valor_total", Label: "Valor Total", Path: "prod/vProd", Kind: format.KindCurrency},
	{ID: "ean", Label: "EAN", Path: "prod/cEAN", Kind: format.KindText},
}

var defaultHeaderIDs = []string{
	"numero_nf", "serie", "data_emissao", "chave",
	"emit_cnpj", "emit_nome", "emit_uf",
	"dest_cnpj_cpf", "dest_nome", "dest_uf",
	"valor_produtos", "valor_total",
}

var defaultItemIDs = []string{
	"codigo", "descricao", "ncm", "cfop",
	"unidade", "quantidade", "valor_unitario", "valor_total",
}
