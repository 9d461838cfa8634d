package sdi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// mandatorySections are the top-level and body sections whose absence means
// the document would be rejected outright by the exchange system. Full schema
// validation is the exchange system's job; this check catches gross
// generation failures before transmission.
var mandatorySections = []string{
	"FatturaElettronicaHeader",
	"DatiTrasmissione",
	"CedentePrestatore",
	"CessionarioCommittente",
	"FatturaElettronicaBody",
	"DatiGenerali",
	"DatiBeniServizi",
	"DettaglioLinee",
	"DatiRiepilogo",
	"DatiPagamento",
}

// Result reports the structural state of a generated document.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err returns nil for a valid result, otherwise a *StructureError carrying
// every finding.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &StructureError{Findings: r.Errors}
}

// StructureError means the document must not be transmitted.
type StructureError struct {
	Findings []string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("interchange document failed structural checks: %s", strings.Join(e.Findings, "; "))
}

// Validate walks the document and reports every missing mandatory section,
// not just the first.
func Validate(data []byte) Result {
	seen := make(map[string]bool)

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{Errors: []string{fmt.Sprintf("malformed XML: %v", err)}}
		}
		if start, ok := tok.(xml.StartElement); ok {
			seen[start.Name.Local] = true
		}
	}

	if !seen["FatturaElettronica"] {
		return Result{Errors: []string{"missing document root FatturaElettronica"}}
	}

	var errs []string
	for _, section := range mandatorySections {
		if !seen[section] {
			errs = append(errs, fmt.Sprintf("missing mandatory section %s", section))
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}
