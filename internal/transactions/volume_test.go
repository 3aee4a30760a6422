package transactions

import (
	"testing"

	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeVolume(t *testing.T) {
	tests := []struct {
		bracket domain.IncomeBracket
		want    float64
	}{
		{domain.Income0To1500, 1.0},
		{domain.Income5001To8000, 1.0},
		{domain.Income8001To12000, 1.2},
		{domain.Income12001Plus, 1.5},
	}
	for _, tt := range tests {
		t.Run(string(tt.bracket), func(t *testing.T) {
			got := IncomeVolume{}.Multiplier(domain.Customer{IncomeBracket: tt.bracket})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreditScoreVolume(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{300, 0.8},
		{449, 0.8},
		{450, 1.0},
		{649, 1.0},
		{650, 1.1},
		{799, 1.1},
		{800, 1.3},
		{950, 1.3},
	}
	for _, tt := range tests {
		got := CreditScoreVolume{}.Multiplier(domain.Customer{CreditScore: tt.score})
		assert.Equal(t, tt.want, got, "score=%d", tt.score)
	}
}

func TestParseVolumePolicy(t *testing.T) {
	p, err := ParseVolumePolicy("")
	require.NoError(t, err)
	assert.IsType(t, IncomeVolume{}, p)

	p, err = ParseVolumePolicy(VolumeByCreditScore)
	require.NoError(t, err)
	assert.IsType(t, CreditScoreVolume{}, p)

	_, err = ParseVolumePolicy("age")
	assert.Error(t, err)
}
