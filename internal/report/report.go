// Package report renders scan results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"dlmm-binscan/internal/scan"
)

// Format is an output format name.
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatTable, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, table or json)", s)
}

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Write renders result to w in the given format.
func Write(w io.Writer, format Format, result *scan.Result) error {
	switch format {
	case FormatTable:
		return WriteTable(w, result)
	case FormatJSON:
		return WriteJSON(w, result)
	default:
		return WriteText(w, result)
	}
}

// WriteText writes one line per flagged bin array followed by the summary.
func WriteText(w io.Writer, result *scan.Result) error {
	fmt.Fprintln(w, "\n=== Results ===")
	fmt.Fprintf(w, "Total BinArray accounts found: %d\n", result.Total)

	for _, f := range result.Findings {
		fmt.Fprintf(w, "Found 0 price in bin array %s\n", f.Address)
	}
	writeFailures(w, result)

	_, err := fmt.Fprintf(w, "bin_arrays_with_zero_price: %s\n", colorCount(result.ZeroPriceCount()))
	return err
}

// WriteTable writes findings as an aligned table.
func WriteTable(w io.Writer, result *scan.Result) error {
	fmt.Fprintln(w, bold("Zero Price Bin Arrays"))
	if result.Slot > 0 {
		fmt.Fprintf(w, "  Slot: %d\n", result.Slot)
	}
	fmt.Fprintf(w, "  Accounts: %d fetched, %d decoded, %d failed\n\n",
		result.Total, result.Decoded, len(result.Failures))

	if len(result.Findings) == 0 {
		fmt.Fprintln(w, green("No bin array has a zero price bin."))
	} else {
		headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
		tbl := table.New("Bin Array", "LB Pair", "Index", "Version", "Bin", "Bin ID")
		tbl.WithHeaderFormatter(headerFmt).WithWriter(w)

		for _, f := range result.Findings {
			tbl.AddRow(f.Address, f.LbPair, f.Index, f.Version, f.BinPosition, f.BinID)
		}
		tbl.Print()
	}
	fmt.Fprintln(w)

	writeFailures(w, result)

	_, err := fmt.Fprintf(w, "bin_arrays_with_zero_price: %s\n", colorCount(result.ZeroPriceCount()))
	return err
}

func writeFailures(w io.Writer, result *scan.Result) {
	for _, f := range result.Failures {
		fmt.Fprintf(w, "%s %s (%s): %v\n", yellow("Skipped"), f.Address, f.Reason(), f.Err)
	}
}

func colorCount(n int) string {
	if n == 0 {
		return green(n)
	}
	return red(n)
}

// document is the JSON shape of a scan result.
type document struct {
	ProgramID      string         `json:"programId"`
	Slot           int64          `json:"slot,omitempty"`
	Total          int            `json:"total"`
	Decoded        int            `json:"decoded"`
	ZeroPriceCount int            `json:"binArraysWithZeroPrice"`
	Findings       []scan.Finding `json:"findings"`
	Failures       []failureDoc   `json:"failures"`
	DurationMillis int64          `json:"durationMs"`
}

type failureDoc struct {
	Position int    `json:"position"`
	Address  string `json:"address"`
	Reason   string `json:"reason"`
	Error    string `json:"error"`
}

// WriteJSON writes result as an indented JSON document.
func WriteJSON(w io.Writer, result *scan.Result) error {
	doc := document{
		ProgramID:      result.ProgramID.String(),
		Slot:           result.Slot,
		Total:          result.Total,
		Decoded:        result.Decoded,
		ZeroPriceCount: result.ZeroPriceCount(),
		Findings:       result.Findings,
		Failures:       make([]failureDoc, 0, len(result.Failures)),
		DurationMillis: result.Duration.Milliseconds(),
	}
	if doc.Findings == nil {
		doc.Findings = []scan.Finding{}
	}
	for _, f := range result.Failures {
		doc.Failures = append(doc.Failures, failureDoc{
			Position: f.Position,
			Address:  f.Address,
			Reason:   f.Reason(),
			Error:    f.Err.Error(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteInspection writes the decoded state of a single bin array.
func WriteInspection(w io.Writer, insp *scan.Inspection) error {
	ba := insp.BinArray
	fmt.Fprintf(w, "Bin array %s\n", insp.Address)
	fmt.Fprintf(w, "  LB pair: %s\n  Index: %d (bins %d..%d)\n  Version: %d\n\n",
		ba.LbPair, ba.Index, ba.LowerBinID(), ba.BinID(len(ba.Bins)-1), ba.Version)

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Bin", "Bin ID", "Amount X", "Amount Y", "Price", "Liquidity")
	tbl.WithHeaderFormatter(headerFmt).WithWriter(w)

	for i := range ba.Bins {
		b := &ba.Bins[i]
		price := b.Price.String()
		if b.Price.IsZero() {
			price = red(price)
		}
		tbl.AddRow(i, ba.BinID(i), b.AmountX, b.AmountY, price, b.LiquiditySupply)
	}
	tbl.Print()

	_, err := fmt.Fprintf(w, "\nzero_price_bins: %s\n", colorCount(len(insp.ZeroPrices)))
	return err
}
