// Package csvio reads and writes the transaction history as CSV.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// Column names, in export order.
const (
	ColDate        = "Fecha"
	ColKind        = "Tipo"
	ColCategory    = "Categoría"
	ColAccount     = "Cuenta"
	ColAmount      = "Monto"
	ColDescription = "Descripción"
	ColMember      = "Miembro"
	ColDestination = "Destino"
	ColRecurring   = "Recurrente"
	ColFrequency   = "Frecuencia"
)

// Columns is the header written on export.
var Columns = []string{
	ColDate, ColKind, ColCategory, ColAccount, ColAmount,
	ColDescription, ColMember, ColDestination, ColRecurring, ColFrequency,
}

// RequiredColumns must be present in every imported file.
var RequiredColumns = []string{ColDate, ColKind, ColCategory, ColAccount, ColAmount}

const (
	bom        = "\ufeff"
	dateLayout = "2006-01-02T15:04:05"
)

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

// ImportResult holds the rows that could be read and why the rest were skipped.
type ImportResult struct {
	Transactions []model.Transaction
	Skipped      int
	Errors       []error
}

// Import parses a history file. Every accepted row gets a fresh id and is
// normalized. Only a malformed header fails the whole import.
func Import(r io.Reader) (ImportResult, error) {
	res := ImportResult{}
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == bom {
		br.Discard(len(bom))
	}
	csvr := csv.NewReader(br)
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	header, err := csvr.Read()
	if err == io.EOF {
		return res, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}
	if err != nil {
		return res, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return res, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	line := 1
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		t, err := parseRecord(field)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		res.Transactions = append(res.Transactions, t)
	}
	return res, nil
}

func parseRecord(field func(string) string) (model.Transaction, error) {
	date, err := model.ParseDate(field(ColDate))
	if err != nil {
		return model.Transaction{}, err
	}
	kind, err := model.ParseKind(field(ColKind))
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := decimal.NewFromString(field(ColAmount))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q", field(ColAmount))
	}
	if amount.Sign() < 0 {
		return model.Transaction{}, fmt.Errorf("negative amount %s", amount)
	}
	freq, err := model.ParseFrequency(field(ColFrequency))
	if err != nil {
		return model.Transaction{}, err
	}

	t := model.Transaction{
		Date:        date,
		Kind:        kind,
		Category:    field(ColCategory),
		Account:     field(ColAccount),
		Amount:      amount,
		Description: field(ColDescription),
		Member:      field(ColMember),
		Destination: field(ColDestination),
		IsRecurring: parseBool(field(ColRecurring)),
		Frequency:   freq,
	}
	t.GenerateID()
	t.Normalize()
	if t.Kind == model.KindTransfer {
		if t.Destination == model.NotApplicable {
			return model.Transaction{}, errors.New("transfer without destination")
		}
		if t.Destination == t.Account {
			return model.Transaction{}, fmt.Errorf("transfer from %q to itself", t.Account)
		}
	}
	return t, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "sí", "si", "yes":
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// Export writes txs with a UTF-8 BOM so spreadsheet tools detect the encoding.
func Export(w io.Writer, txs []model.Transaction) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	csvw := csv.NewWriter(w)
	if err := csvw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, t := range txs {
		rec := []string{
			t.Date.Format(dateLayout),
			string(t.Kind),
			t.Category,
			t.Account,
			t.Amount.String(),
			t.Description,
			t.Member,
			t.Destination,
			formatBool(t.IsRecurring),
			string(t.Frequency),
		}
		if err := csvw.Write(rec); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	csvw.Flush()
	if err := csvw.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
