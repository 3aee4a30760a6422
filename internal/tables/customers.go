package tables

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/domain"
)

// CustomerHeader is the column layout of the customer table.
var CustomerHeader = []string{
	"customer_id",
	"nome_completo",
	"data_nascimento",
	"idade",
	"cidade",
	"estado",
	"data_criacao_conta",
	"faixa_renda_mensal",
	"score_de_credito",
}

// WriteCustomers writes the customer table.
func WriteCustomers(w io.Writer, customers []domain.Customer) error {
	cw, err := newWriter(w, CustomerHeader)
	if err != nil {
		return fmt.Errorf("WriteCustomers: %w", err)
	}
	for _, c := range customers {
		rec := []string{
			strconv.FormatInt(c.ID, 10),
			c.FullName,
			c.BirthDate.String(),
			strconv.Itoa(c.Age),
			c.City,
			c.State,
			c.AccountOpened.String(),
			string(c.IncomeBracket),
			strconv.Itoa(c.CreditScore),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteCustomers: customer %d: %w", c.ID, err)
		}
	}
	if err := flush(cw); err != nil {
		return fmt.Errorf("WriteCustomers: %w", err)
	}
	return nil
}

// ReadCustomers parses a customer table written by WriteCustomers.
func ReadCustomers(r io.Reader) ([]domain.Customer, error) {
	cr, _, err := newReader(r, CustomerHeader, true)
	if err != nil {
		return nil, fmt.Errorf("ReadCustomers: %w", err)
	}

	var out []domain.Customer
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCustomers: %w", err)
		}
		c, err := parseCustomer(rec)
		if err != nil {
			return nil, fmt.Errorf("ReadCustomers: line %d: %w", line, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseCustomer(rec []string) (domain.Customer, error) {
	var (
		c   domain.Customer
		err error
	)
	if c.ID, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
		return c, fmt.Errorf("customer_id: %w", err)
	}
	c.FullName = rec[1]
	if c.BirthDate, err = civil.ParseDate(rec[2]); err != nil {
		return c, fmt.Errorf("data_nascimento: %w", err)
	}
	if c.Age, err = strconv.Atoi(rec[3]); err != nil {
		return c, fmt.Errorf("idade: %w", err)
	}
	c.City = rec[4]
	c.State = rec[5]
	if c.AccountOpened, err = civil.ParseDate(rec[6]); err != nil {
		return c, fmt.Errorf("data_criacao_conta: %w", err)
	}
	bracket, ok := domain.ParseIncomeBracket(rec[7])
	if !ok {
		return c, fmt.Errorf("faixa_renda_mensal: unknown bracket %q", rec[7])
	}
	c.IncomeBracket = bracket
	if c.CreditScore, err = strconv.Atoi(rec[8]); err != nil {
		return c, fmt.Errorf("score_de_credito: %w", err)
	}
	return c, nil
}
