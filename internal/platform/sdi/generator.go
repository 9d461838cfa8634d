package sdi

import (
	"encoding/xml"
	"fmt"
)

// Generate renders the document into the fixed government invoice schema.
// Output is deterministic: the same Document always produces the same bytes.
// Escaping of reserved characters happens at the leaf-value boundary inside
// the XML marshaller, so structural correctness does not depend on callers
// sanitizing text.
func Generate(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("sdi: document is nil")
	}
	if len(doc.Lines) == 0 {
		return nil, fmt.Errorf("sdi: document has no detail lines")
	}
	if doc.Supplier.TaxCode == "" {
		return nil, fmt.Errorf("sdi: supplier tax code is required")
	}
	if doc.Customer.TaxCode == "" {
		return nil, fmt.Errorf("sdi: customer tax code is required")
	}

	fe := buildDocument(doc)

	output, err := xml.MarshalIndent(fe, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sdi: marshal document: %w", err)
	}

	header := []byte(xml.Header)
	result := make([]byte, len(header)+len(output))
	copy(result, header)
	copy(result[len(header):], output)
	return result, nil
}

func buildDocument(doc *Document) *fatturaElettronica {
	nature := ExemptionNature(doc.Regime)

	fe := &fatturaElettronica{
		Versione: formatoTrasmissione,
		XmlnsP:   "http://ivaservizi.agenziaentrate.gov.it/docs/xsd/fatture/v1.2",
		Header: header{
			DatiTrasmissione: datiTrasmissione{
				IdTrasmittente: idFiscale{
					IdPaese:  doc.TransmitterCountry,
					IdCodice: doc.TransmitterCode,
				},
				ProgressivoInvio:    doc.Progressive,
				FormatoTrasmissione: formatoTrasmissione,
				CodiceDestinatario:  doc.RecipientCode,
			},
			CedentePrestatore: cedentePrestatore{
				DatiAnagrafici: datiAnagrafici{
					IdFiscaleIVA:  supplierVAT(doc),
					CodiceFiscale: doc.Supplier.TaxCode,
					Anagrafica:    anagrafica{Denominazione: doc.Supplier.Denomination},
					RegimeFiscale: regimeCode(doc.Regime),
				},
				Sede: buildSede(doc.Supplier),
			},
			CessionarioCommittente: cessionarioCommittente{
				DatiAnagrafici: datiAnagrafici{
					CodiceFiscale: doc.Customer.TaxCode,
					Anagrafica:    anagrafica{Denominazione: doc.Customer.Denomination},
				},
				Sede: buildSede(doc.Customer),
			},
		},
		Body: body{
			DatiGenerali: datiGenerali{
				DatiGeneraliDocumento: datiGeneraliDocumento{
					TipoDocumento:          tipoDocumento,
					Divisa:                 divisa,
					Data:                   doc.IssueDate.Format("2006-01-02"),
					Numero:                 doc.Number,
					DatiBollo:              buildBollo(doc),
					ImportoTotaleDocumento: doc.Total.StringFixed(2),
				},
			},
			DatiBeniServizi: datiBeniServizi{
				DettaglioLinee: buildLines(doc, nature),
				DatiRiepilogo: datiRiepilogo{
					AliquotaIVA:          aliquotaZero,
					Natura:               nature,
					ImponibileImporto:    doc.TaxableAmount.StringFixed(2),
					Imposta:              impostaZero,
					RiferimentoNormativo: ExemptionCitation(doc.Regime),
				},
			},
			DatiPagamento: datiPagamento{
				CondizioniPagamento: condizioniPagamento,
				DettaglioPagamento: dettaglioPagamento{
					ModalitaPagamento: PaymentCode(doc.PaymentMethod),
					ImportoPagamento:  doc.Total.StringFixed(2),
				},
			},
		},
	}
	return fe
}

func supplierVAT(doc *Document) *idFiscale {
	if doc.Supplier.VATNumber == "" {
		return nil
	}
	return &idFiscale{IdPaese: doc.Supplier.Country, IdCodice: doc.Supplier.VATNumber}
}

func buildSede(p Party) sede {
	return sede{
		Indirizzo: p.Street,
		CAP:       p.PostalCode,
		Comune:    p.City,
		Provincia: p.Province,
		Nazione:   p.Country,
	}
}

func buildBollo(doc *Document) *datiBollo {
	if doc.StampDuty.IsZero() {
		return nil
	}
	return &datiBollo{BolloVirtuale: "SI", ImportoBollo: doc.StampDuty.StringFixed(2)}
}

func buildLines(doc *Document, nature string) []dettaglioLinee {
	lines := make([]dettaglioLinee, len(doc.Lines))
	for i, l := range doc.Lines {
		lines[i] = dettaglioLinee{
			NumeroLinea:    i + 1,
			Descrizione:    l.Description,
			Quantita:       l.Quantity.StringFixed(2),
			PrezzoUnitario: l.UnitPrice.StringFixed(2),
			PrezzoTotale:   l.Total.StringFixed(2),
			AliquotaIVA:    aliquotaZero,
			Natura:         nature,
		}
	}
	return lines
}
