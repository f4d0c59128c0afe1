package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayout(t *testing.T) {
	p, err := NewPayout(uuid.New(), uuid.New(), decimal.RequireFromString("40.00"))
	require.NoError(t, err)
	assert.True(t, p.IsPending())

	_, err = NewPayout(uuid.New(), uuid.New(), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewPayout_AmountPrecision(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		ok     bool
	}{
		{"cents", "12.34", true},
		{"largest", "99999999.99", true},
		{"sub-cent", "0.004", false},
		{"tenth of a cent", "0.001", false},
		{"above column", "123456789.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPayout(uuid.New(), uuid.New(), decimal.RequireFromString(tt.amount))
			if tt.ok {
				require.NoError(t, err)
				assert.True(t, p.Amount.Equal(p.Amount.Round(2)))
				return
			}
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestPayoutTransition_MicrosecondTimestamp(t *testing.T) {
	p, err := NewPayout(uuid.New(), uuid.New(), decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, p.Process())
	assert.Zero(t, p.UpdatedAt.Nanosecond()%1000)
	assert.Equal(t, p.UpdatedAt, p.UpdatedAt.Truncate(time.Microsecond))
}

func TestPayoutTransitions(t *testing.T) {
	all := []PayoutStatus{PayoutPending, PayoutProcessing, PayoutPaid, PayoutFailed}

	tests := []struct {
		name    string
		apply   func(*Payout) error
		target  PayoutStatus
		allowed []PayoutStatus
	}{
		{"process", (*Payout).Process, PayoutProcessing, []PayoutStatus{PayoutPending}},
		{"complete", (*Payout).Complete, PayoutPaid, []PayoutStatus{PayoutPending, PayoutProcessing}},
		{"fail", (*Payout).Fail, PayoutFailed, all},
	}
	for _, tt := range tests {
		for _, from := range all {
			t.Run(tt.name+" from "+string(from), func(t *testing.T) {
				p, err := NewPayout(uuid.New(), uuid.New(), decimal.NewFromInt(10))
				require.NoError(t, err)
				p.Status = from

				err = tt.apply(p)
				legal := false
				for _, s := range tt.allowed {
					if s == from {
						legal = true
					}
				}
				if legal {
					require.NoError(t, err)
					assert.Equal(t, tt.target, p.Status)
					return
				}
				assert.True(t, IsIllegalTransition(err))
				assert.Equal(t, from, p.Status)
			})
		}
	}
}

func TestPayoutIsOutstanding(t *testing.T) {
	assert.True(t, (&Payout{Status: PayoutPending}).IsOutstanding())
	assert.True(t, (&Payout{Status: PayoutProcessing}).IsOutstanding())
	assert.False(t, (&Payout{Status: PayoutPaid}).IsOutstanding())
	assert.False(t, (&Payout{Status: PayoutFailed}).IsOutstanding())
}
