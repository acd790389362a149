package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchApply(t *testing.T) {
	base := Fields{
		Timestamp:  100,
		Token:      "BTC",
		Volume:     5,
		WalletFrom: "A",
		WalletTo:   "B",
		Extra:      map[string]string{"chain": "main"},
	}

	p := NewPatch().WithToken("ETH").WithVolume(3).WithExtra("memo", "x").Build()
	assert.False(t, p.IsEmpty())

	got := p.Apply(base)
	assert.Equal(t, "ETH", got.Token)
	assert.Equal(t, 3.0, got.Volume)
	assert.Equal(t, int64(100), got.Timestamp)
	assert.Equal(t, "A", got.WalletFrom)
	assert.Equal(t, map[string]string{"chain": "main", "memo": "x"}, got.Extra)

	// The base fields must stay untouched.
	assert.Equal(t, "BTC", base.Token)
	assert.Equal(t, map[string]string{"chain": "main"}, base.Extra)
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.True(t, NewPatch().Build().IsEmpty())
}
