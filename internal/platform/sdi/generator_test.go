package sdi

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleDocument() *Document {
	return &Document{
		TransmitterCountry: "IT",
		TransmitterCode:    "RSSMRA80A01H501U",
		Progressive:        "00001",
		RecipientCode:      "0000000",
		Supplier: Party{
			Country:      "IT",
			TaxCode:      "RSSMRA80A01H501U",
			VATNumber:    "01234567890",
			Denomination: "Dott.ssa Maria Rossi",
			Street:       "Via Roma 1",
			City:         "Milano",
			PostalCode:   "20100",
			Province:     "MI",
		},
		Customer: Party{
			Country:      "IT",
			TaxCode:      "VRDLGI85M01F205Z",
			Denomination: "Luigi Verdi",
			Street:       "Via Garibaldi 2",
			City:         "Milano",
			PostalCode:   "20121",
			Province:     "MI",
		},
		Regime:        RegimeFlatRate,
		Number:        "2024-001",
		IssueDate:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "bank_transfer",
		Lines: []Line{
			{
				Description: "Seduta individuale",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.RequireFromString("80.00"),
				Total:       decimal.RequireFromString("80.00"),
			},
			{
				Description: "Contributo integrativo ENPAP 2% - art. 8 D.Lgs. 103/1996",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.RequireFromString("1.60"),
				Total:       decimal.RequireFromString("1.60"),
			},
		},
		TaxableAmount: decimal.RequireFromString("81.60"),
		StampDuty:     decimal.Zero,
		Total:         decimal.RequireFromString("81.60"),
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	doc := sampleDocument()
	first, err := Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("expected byte-identical output for identical input")
	}
}

func TestGenerate_ContainsMandatorySections(t *testing.T) {
	data, err := Generate(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	for _, section := range mandatorySections {
		if !strings.Contains(out, "<"+section+">") {
			t.Errorf("expected section %s in output", section)
		}
	}
	if !strings.Contains(out, "<Numero>2024-001</Numero>") {
		t.Error("expected invoice number element")
	}
	if !strings.Contains(out, "<ModalitaPagamento>MP05</ModalitaPagamento>") {
		t.Error("expected bank transfer mapped to MP05")
	}
	if !strings.Contains(out, "<RegimeFiscale>RF19</RegimeFiscale>") {
		t.Error("expected flat-rate regime code RF19")
	}
	if !strings.Contains(out, "<Natura>N2.2</Natura>") {
		t.Error("expected flat-rate exemption nature N2.2")
	}
}

func TestGenerate_StampDutyBlock(t *testing.T) {
	doc := sampleDocument()
	data, err := Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), "<DatiBollo>") {
		t.Error("expected no stamp duty block below threshold")
	}

	doc.StampDuty = decimal.RequireFromString("2.00")
	data, err = Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "<BolloVirtuale>SI</BolloVirtuale>") {
		t.Error("expected virtual stamp marker")
	}
	if !strings.Contains(out, "<ImportoBollo>2.00</ImportoBollo>") {
		t.Error("expected stamp duty amount 2.00")
	}
}

func TestGenerate_OrdinaryRegime(t *testing.T) {
	doc := sampleDocument()
	doc.Regime = RegimeOrdinary
	data, err := Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "<RegimeFiscale>RF01</RegimeFiscale>") {
		t.Error("expected ordinary regime code RF01")
	}
	if !strings.Contains(out, "<Natura>N4</Natura>") {
		t.Error("expected ordinary exemption nature N4")
	}
}

func TestGenerate_EscapingRoundTrip(t *testing.T) {
	descriptions := []string{
		`O'Brien & Sons "Clinic"`,
		"Colloquio <iniziale> & valutazione",
		"Sedute di gruppo — però così",
	}
	for _, desc := range descriptions {
		doc := sampleDocument()
		doc.Lines[0].Description = desc

		data, err := Generate(doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed struct {
			Body struct {
				Beni struct {
					Lines []struct {
						Descrizione string `xml:"Descrizione"`
					} `xml:"DettaglioLinee"`
				} `xml:"DatiBeniServizi"`
			} `xml:"FatturaElettronicaBody"`
		}
		if err := xml.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("generated document does not parse: %v", err)
		}
		if len(parsed.Body.Beni.Lines) == 0 {
			t.Fatal("expected detail lines")
		}
		if got := parsed.Body.Beni.Lines[0].Descrizione; got != desc {
			t.Errorf("description did not round-trip: got %q want %q", got, desc)
		}
	}
}

func TestGenerate_OnlyProgressiveVaries(t *testing.T) {
	doc := sampleDocument()
	first, err := Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc.Progressive = "00002"
	second, err := Generate(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := strings.Replace(string(first), "<ProgressivoInvio>00001</ProgressivoInvio>", "", 1)
	b := strings.Replace(string(second), "<ProgressivoInvio>00002</ProgressivoInvio>", "", 1)
	if a != b {
		t.Error("expected output to differ only in the transmission progressive")
	}
}

func TestGenerate_RejectsIncompleteInput(t *testing.T) {
	if _, err := Generate(nil); err == nil {
		t.Error("expected error for nil document")
	}

	doc := sampleDocument()
	doc.Lines = nil
	if _, err := Generate(doc); err == nil {
		t.Error("expected error for document without lines")
	}

	doc = sampleDocument()
	doc.Supplier.TaxCode = ""
	if _, err := Generate(doc); err == nil {
		t.Error("expected error for supplier without tax code")
	}
}

func TestPaymentCode(t *testing.T) {
	cases := map[string]string{
		"cash":          "MP01",
		"cheque":        "MP02",
		"bank_transfer": "MP05",
		"card":          "MP08",
		"pos":           "MP08",
		"wallet":        "MP08",
		"barter":        "MP05", // unmapped falls back to the default
	}
	for method, want := range cases {
		if got := PaymentCode(method); got != want {
			t.Errorf("PaymentCode(%q) = %q, want %q", method, got, want)
		}
	}
}
