package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the categorical kind of a synthetic movement.
type TransactionType string

const (
	TypeDebit       TransactionType = "Débito"
	TypeCredit      TransactionType = "Crédito"
	TypeWire        TransactionType = "TED"
	TypePaperOrder  TransactionType = "DOC"
	TypeBillPayment TransactionType = "Boleto"
	TypeInstant     TransactionType = "PIX"
)

// PreLaunchTypes is the vocabulary before the instant-payment launch date.
var PreLaunchTypes = []TransactionType{TypeDebit, TypeCredit, TypeWire, TypePaperOrder, TypeBillPayment}

// PostLaunchTypes is the non-instant vocabulary after launch. DOC is retired.
var PostLaunchTypes = []TransactionType{TypeDebit, TypeCredit, TypeWire, TypeBillPayment}

// Channel is where a transaction was initiated.
type Channel string

const (
	ChannelMobile   Channel = "Mobile App"
	ChannelInternet Channel = "Internet Banking"
	ChannelBranch   Channel = "Agência"
	ChannelATM      Channel = "Caixa Eletrônico"
)

var (
	DigitalChannels  = []Channel{ChannelMobile, ChannelInternet}
	PhysicalChannels = []Channel{ChannelBranch, ChannelATM}
)

// MinAmount is the floor applied to every sampled amount.
var MinAmount = decimal.NewFromInt(1)

// Transaction is one row of the transaction fact table.
type Transaction struct {
	ID         int64
	CustomerID int64
	Timestamp  time.Time // UTC, date part only carries meaning
	Type       TransactionType
	Amount     decimal.Decimal // 2 decimal places, >= MinAmount
	Channel    Channel
}

// ParseTransactionType validates a type read back from a table.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(s); t {
	case TypeDebit, TypeCredit, TypeWire, TypePaperOrder, TypeBillPayment, TypeInstant:
		return t, true
	}
	return "", false
}

// ParseChannel validates a channel read back from a table.
func ParseChannel(s string) (Channel, bool) {
	switch c := Channel(s); c {
	case ChannelMobile, ChannelInternet, ChannelBranch, ChannelATM:
		return c, true
	}
	return "", false
}
