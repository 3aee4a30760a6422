package domain

import (
	"cloud.google.com/go/civil"
)

// Credit score clamp bounds.
const (
	MinCreditScore = 300
	MaxCreditScore = 950
)

// Customer age bounds at generation time.
const (
	MinAge = 18
	MaxAge = 80
)

// IncomeBracket bands a customer's monthly income in BRL.
type IncomeBracket string

const (
	Income0To1500     IncomeBracket = "0-1500"
	Income1501To3000  IncomeBracket = "1501-3000"
	Income3001To5000  IncomeBracket = "3001-5000"
	Income5001To8000  IncomeBracket = "5001-8000"
	Income8001To12000 IncomeBracket = "8001-12000"
	Income12001Plus   IncomeBracket = "12001+"
)

// IncomeBrackets lists the brackets in ascending order.
var IncomeBrackets = []IncomeBracket{
	Income0To1500,
	Income1501To3000,
	Income3001To5000,
	Income5001To8000,
	Income8001To12000,
	Income12001Plus,
}

// ParseIncomeBracket validates a bracket read back from a table.
func ParseIncomeBracket(s string) (IncomeBracket, bool) {
	for _, b := range IncomeBrackets {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// Customer is one row of the customer dimension. Records are immutable once
// generated.
type Customer struct {
	ID            int64
	FullName      string
	BirthDate     civil.Date
	Age           int
	City          string
	State         string
	AccountOpened civil.Date
	IncomeBracket IncomeBracket
	CreditScore   int
}

// ClampCreditScore bounds a sampled score to [MinCreditScore, MaxCreditScore].
func ClampCreditScore(score int) int {
	return max(MinCreditScore, min(MaxCreditScore, score))
}

// AgeAt returns the number of completed years between birth and asOf.
func AgeAt(birth, asOf civil.Date) int {
	age := asOf.Year - birth.Year
	if asOf.Month < birth.Month || (asOf.Month == birth.Month && asOf.Day < birth.Day) {
		age--
	}
	return age
}
