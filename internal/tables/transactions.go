package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/shopspring/decimal"
)

// TimestampLayout is the data_transacao format.
const TimestampLayout = "2006-01-02 15:04:05"

// TransactionHeader is the column layout of the transaction table.
var TransactionHeader = []string{
	"transaction_id",
	"customer_id",
	"data_transacao",
	"tipo_transacao",
	"valor_transacao",
	"canal",
}

// TransactionWriter streams transactions to a CSV table one row at a time.
type TransactionWriter struct {
	cw   *csv.Writer
	rec  []string
	rows int
}

// NewTransactionWriter writes the header and returns a streaming writer.
func NewTransactionWriter(w io.Writer) (*TransactionWriter, error) {
	cw, err := newWriter(w, TransactionHeader)
	if err != nil {
		return nil, fmt.Errorf("NewTransactionWriter: %w", err)
	}
	return &TransactionWriter{cw: cw, rec: make([]string, len(TransactionHeader))}, nil
}

// Write appends one row. It has the signature of the generator's emit
// callback.
func (tw *TransactionWriter) Write(tx domain.Transaction) error {
	tw.rec[0] = strconv.FormatInt(tx.ID, 10)
	tw.rec[1] = strconv.FormatInt(tx.CustomerID, 10)
	tw.rec[2] = tx.Timestamp.Format(TimestampLayout)
	tw.rec[3] = string(tx.Type)
	tw.rec[4] = tx.Amount.StringFixed(2)
	tw.rec[5] = string(tx.Channel)
	if err := tw.cw.Write(tw.rec); err != nil {
		return fmt.Errorf("TransactionWriter.Write: transaction %d: %w", tx.ID, err)
	}
	tw.rows++
	return nil
}

// Rows is the number of rows written so far.
func (tw *TransactionWriter) Rows() int {
	return tw.rows
}

// Flush writes any buffered rows.
func (tw *TransactionWriter) Flush() error {
	if err := flush(tw.cw); err != nil {
		return fmt.Errorf("TransactionWriter.Flush: %w", err)
	}
	return nil
}

// WriteTransactions writes a complete transaction table.
func WriteTransactions(w io.Writer, txs []domain.Transaction) error {
	tw, err := NewTransactionWriter(w)
	if err != nil {
		return err
	}
	for _, tx := range txs {
		if err := tw.Write(tx); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// ReadTransactions parses a transaction table written by TransactionWriter.
func ReadTransactions(r io.Reader) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := ScanTransactions(r, func(tx domain.Transaction) error {
		out = append(out, tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScanTransactions parses a transaction table row by row, handing each
// transaction to fn. It stops at the first error fn returns.
func ScanTransactions(r io.Reader, fn func(domain.Transaction) error) error {
	cr, _, err := newReader(r, TransactionHeader, true)
	if err != nil {
		return fmt.Errorf("ScanTransactions: %w", err)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("ScanTransactions: %w", err)
		}
		tx, err := parseTransaction(rec)
		if err != nil {
			return fmt.Errorf("ScanTransactions: line %d: %w", line, err)
		}
		if err := fn(tx); err != nil {
			return err
		}
	}
}

func parseTransaction(rec []string) (domain.Transaction, error) {
	var (
		tx  domain.Transaction
		err error
	)
	if tx.ID, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
		return tx, fmt.Errorf("transaction_id: %w", err)
	}
	if tx.CustomerID, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
		return tx, fmt.Errorf("customer_id: %w", err)
	}
	if tx.Timestamp, err = time.ParseInLocation(TimestampLayout, rec[2], time.UTC); err != nil {
		return tx, fmt.Errorf("data_transacao: %w", err)
	}
	typ, ok := domain.ParseTransactionType(rec[3])
	if !ok {
		return tx, fmt.Errorf("tipo_transacao: unknown type %q", rec[3])
	}
	tx.Type = typ
	if tx.Amount, err = decimal.NewFromString(rec[4]); err != nil {
		return tx, fmt.Errorf("valor_transacao: %w", err)
	}
	ch, ok := domain.ParseChannel(rec[5])
	if !ok {
		return tx, fmt.Errorf("canal: unknown channel %q", rec[5])
	}
	tx.Channel = ch
	return tx, nil
}
