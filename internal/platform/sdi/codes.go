package sdi

// Fiscal regimes recognized by the engine. These match the wire values stored
// on the issuer profile.
const (
	RegimeOrdinary = "ordinario"
	RegimeFlatRate = "forfettario"
)

const (
	formatoTrasmissione = "FPR12"
	tipoDocumento       = "TD01"
	divisa              = "EUR"
	condizioniPagamento = "TP02"
	aliquotaZero        = "0.00"
	impostaZero         = "0.00"
)

// DefaultPaymentCode is used for payment methods outside the mapping table.
// Payment method is informational, not compliance-critical, so unmapped
// values degrade to the default rather than failing generation.
const DefaultPaymentCode = "MP05"

var paymentCodes = map[string]string{
	"cash":          "MP01",
	"cheque":        "MP02",
	"bank_transfer": "MP05",
	"card":          "MP08",
	"pos":           "MP08",
	"wallet":        "MP08",
}

// PaymentCode maps an application payment method to its 4-character
// interchange code.
func PaymentCode(method string) string {
	if code, ok := paymentCodes[method]; ok {
		return code
	}
	return DefaultPaymentCode
}

// regimeCodes maps the fiscal regime to the interchange RegimeFiscale code.
var regimeCodes = map[string]string{
	RegimeOrdinary: "RF01",
	RegimeFlatRate: "RF19",
}

func regimeCode(regime string) string {
	if code, ok := regimeCodes[regime]; ok {
		return code
	}
	return "RF01"
}

// Healthcare services are categorically VAT-exempt; every detail line carries
// rate 0.00 and the document-wide exemption nature for the issuer's regime.
var natureCodes = map[string]string{
	RegimeOrdinary: "N4",
	RegimeFlatRate: "N2.2",
}

var natureCitations = map[string]string{
	RegimeOrdinary: "Operazione esente da IVA ai sensi dell'art. 10, n. 18, D.P.R. 633/1972",
	RegimeFlatRate: "Operazione senza applicazione dell'IVA ai sensi dell'art. 1, commi 54-89, L. 190/2014",
}

// ExemptionNature returns the VAT exemption nature code for a regime. The
// code is fixed per document and never varies by line content.
func ExemptionNature(regime string) string {
	if code, ok := natureCodes[regime]; ok {
		return code
	}
	return natureCodes[RegimeOrdinary]
}

// ExemptionCitation returns the legal citation backing the exemption nature.
func ExemptionCitation(regime string) string {
	if cit, ok := natureCitations[regime]; ok {
		return cit
	}
	return natureCitations[RegimeOrdinary]
}
