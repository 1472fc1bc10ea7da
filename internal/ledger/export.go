package ledger

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const (
	// CSVFilename is the suggested download name for CSV exports
	CSVFilename = "balance_siaga_export.csv"
	// JSONFilename is the suggested download name for JSON exports
	JSONFilename = "balance_siaga_export.json"
)

var csvHeader = []string{"Tanggal", "Kategori", "Jenis", "Jumlah", "Deskripsi"}

// WriteCSV writes transactions as CSV with every cell quoted
func WriteCSV(w io.Writer, transactions []*Transaction) error {
	bw := bufio.NewWriter(w)
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			bw.WriteByte('"')
		}
	}

	bw.WriteString(strings.Join(csvHeader, ","))
	for _, t := range transactions {
		bw.WriteByte('\n')
		writeRow([]string{
			t.Date,
			t.Category,
			t.Type.Label(),
			t.Amount.String(),
			t.Description,
		})
	}
	return bw.Flush()
}

// WriteJSON writes transactions as an indented JSON array
func WriteJSON(w io.Writer, transactions []*Transaction) error {
	if transactions == nil {
		transactions = []*Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(transactions)
}
