package sdi

import (
	"encoding/xml"
	"time"

	"github.com/shopspring/decimal"
)

// Document is the input to the generator: a finalized invoice flattened to
// the fields the interchange schema needs. Amounts arrive already rounded to
// two decimals; the generator only formats them.
type Document struct {
	TransmitterCountry string
	TransmitterCode    string
	// Progressive identifies the transmission attempt. It is the only field
	// allowed to differ between two renderings of the same invoice.
	Progressive   string
	RecipientCode string

	Supplier Party
	Customer Party
	Regime   string

	Number        string
	IssueDate     time.Time
	PaymentMethod string

	Lines         []Line
	TaxableAmount decimal.Decimal
	StampDuty     decimal.Decimal
	Total         decimal.Decimal
}

// Party identifies either side of the invoice.
type Party struct {
	Country      string
	TaxCode      string
	VATNumber    string
	Denomination string
	Street       string
	City         string
	PostalCode   string
	Province     string
}

// Line is one detail row: a billed service or a synthetic contribution or
// stamp-duty entry.
type Line struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// ---- XML tree (fixed government schema, element order is normative) ----

type fatturaElettronica struct {
	XMLName  xml.Name `xml:"p:FatturaElettronica"`
	Versione string   `xml:"versione,attr"`
	XmlnsP   string   `xml:"xmlns:p,attr"`
	Header   header   `xml:"FatturaElettronicaHeader"`
	Body     body     `xml:"FatturaElettronicaBody"`
}

type header struct {
	DatiTrasmissione       datiTrasmissione       `xml:"DatiTrasmissione"`
	CedentePrestatore      cedentePrestatore      `xml:"CedentePrestatore"`
	CessionarioCommittente cessionarioCommittente `xml:"CessionarioCommittente"`
}

type datiTrasmissione struct {
	IdTrasmittente      idFiscale `xml:"IdTrasmittente"`
	ProgressivoInvio    string    `xml:"ProgressivoInvio"`
	FormatoTrasmissione string    `xml:"FormatoTrasmissione"`
	CodiceDestinatario  string    `xml:"CodiceDestinatario"`
}

type idFiscale struct {
	IdPaese  string `xml:"IdPaese"`
	IdCodice string `xml:"IdCodice"`
}

type cedentePrestatore struct {
	DatiAnagrafici datiAnagrafici `xml:"DatiAnagrafici"`
	Sede           sede           `xml:"Sede"`
}

type cessionarioCommittente struct {
	DatiAnagrafici datiAnagrafici `xml:"DatiAnagrafici"`
	Sede           sede           `xml:"Sede"`
}

type datiAnagrafici struct {
	IdFiscaleIVA  *idFiscale `xml:"IdFiscaleIVA,omitempty"`
	CodiceFiscale string     `xml:"CodiceFiscale,omitempty"`
	Anagrafica    anagrafica `xml:"Anagrafica"`
	RegimeFiscale string     `xml:"RegimeFiscale,omitempty"`
}

type anagrafica struct {
	Denominazione string `xml:"Denominazione"`
}

type sede struct {
	Indirizzo string `xml:"Indirizzo"`
	CAP       string `xml:"CAP"`
	Comune    string `xml:"Comune"`
	Provincia string `xml:"Provincia,omitempty"`
	Nazione   string `xml:"Nazione"`
}

type body struct {
	DatiGenerali    datiGenerali    `xml:"DatiGenerali"`
	DatiBeniServizi datiBeniServizi `xml:"DatiBeniServizi"`
	DatiPagamento   datiPagamento   `xml:"DatiPagamento"`
}

type datiGenerali struct {
	DatiGeneraliDocumento datiGeneraliDocumento `xml:"DatiGeneraliDocumento"`
}

type datiGeneraliDocumento struct {
	TipoDocumento          string     `xml:"TipoDocumento"`
	Divisa                 string     `xml:"Divisa"`
	Data                   string     `xml:"Data"`
	Numero                 string     `xml:"Numero"`
	DatiBollo              *datiBollo `xml:"DatiBollo,omitempty"`
	ImportoTotaleDocumento string     `xml:"ImportoTotaleDocumento"`
}

type datiBollo struct {
	BolloVirtuale string `xml:"BolloVirtuale"`
	ImportoBollo  string `xml:"ImportoBollo"`
}

type datiBeniServizi struct {
	DettaglioLinee []dettaglioLinee `xml:"DettaglioLinee"`
	DatiRiepilogo  datiRiepilogo    `xml:"DatiRiepilogo"`
}

type dettaglioLinee struct {
	NumeroLinea    int    `xml:"NumeroLinea"`
	Descrizione    string `xml:"Descrizione"`
	Quantita       string `xml:"Quantita"`
	PrezzoUnitario string `xml:"PrezzoUnitario"`
	PrezzoTotale   string `xml:"PrezzoTotale"`
	AliquotaIVA    string `xml:"AliquotaIVA"`
	Natura         string `xml:"Natura"`
}

type datiRiepilogo struct {
	AliquotaIVA          string `xml:"AliquotaIVA"`
	Natura               string `xml:"Natura"`
	ImponibileImporto    string `xml:"ImponibileImporto"`
	Imposta              string `xml:"Imposta"`
	RiferimentoNormativo string `xml:"RiferimentoNormativo"`
}

type datiPagamento struct {
	CondizioniPagamento string             `xml:"CondizioniPagamento"`
	DettaglioPagamento  dettaglioPagamento `xml:"DettaglioPagamento"`
}

type dettaglioPagamento struct {
	ModalitaPagamento string `xml:"ModalitaPagamento"`
	ImportoPagamento  string `xml:"ImportoPagamento"`
}
