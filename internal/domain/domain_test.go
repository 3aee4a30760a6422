package domain

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestAgeAt(t *testing.T) {
	asOf := civil.Date{Year: 2025, Month: 10, Day: 15}
	tests := []struct {
		name  string
		birth civil.Date
		want  int
	}{
		{"birthday today", civil.Date{Year: 2007, Month: 10, Day: 15}, 18},
		{"birthday tomorrow", civil.Date{Year: 2007, Month: 10, Day: 16}, 17},
		{"earlier month", civil.Date{Year: 1945, Month: 1, Day: 1}, 80},
		{"later month", civil.Date{Year: 1944, Month: 11, Day: 1}, 80},
		{"leap day", civil.Date{Year: 2004, Month: 2, Day: 29}, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeAt(tt.birth, asOf))
		})
	}
}

func TestClampCreditScore(t *testing.T) {
	assert.Equal(t, 300, ClampCreditScore(-12))
	assert.Equal(t, 300, ClampCreditScore(299))
	assert.Equal(t, 651, ClampCreditScore(651))
	assert.Equal(t, 950, ClampCreditScore(1200))
}

func TestParseVocabularies(t *testing.T) {
	typ, ok := ParseTransactionType("PIX")
	assert.True(t, ok)
	assert.Equal(t, TypeInstant, typ)

	_, ok = ParseTransactionType("Wire")
	assert.False(t, ok)

	ch, ok := ParseChannel("Caixa Eletrônico")
	assert.True(t, ok)
	assert.Equal(t, ChannelATM, ch)

	b, ok := ParseIncomeBracket("12001+")
	assert.True(t, ok)
	assert.Equal(t, Income12001Plus, b)

	_, ok = ParseIncomeBracket("12000+")
	assert.False(t, ok)
}

func TestPostLaunchRetiresPaperOrder(t *testing.T) {
	assert.Contains(t, PreLaunchTypes, TypePaperOrder)
	assert.NotContains(t, PostLaunchTypes, TypePaperOrder)
	assert.NotContains(t, PostLaunchTypes, TypeInstant)
}
