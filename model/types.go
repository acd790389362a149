package model

import (
	"fmt"
	"maps"
)

// ID is the stable identifier of a record.
// IDs are assigned in insertion order starting at zero.
type ID uint64

// String returns a string representation of the ID.
func (id ID) String() string {
	return fmt.Sprintf("rec(%d)", uint64(id))
}

// Fields is the validated field tuple of one transaction-like record.
//
// Timestamp, Token and WalletFrom are indexed. WalletFrom, WalletTo, Token and
// Volume feed the relationship graph.
type Fields struct {
	// Timestamp is the transaction time in epoch seconds.
	Timestamp int64
	// TimestampRaw keeps the source representation of Timestamp, if any.
	TimestampRaw string
	Token        string
	Price        float64
	Volume       float64
	WalletFrom   string
	WalletTo     string
	Status       string
	// Extra holds opaque passthrough fields.
	Extra map[string]string
}

// Missing is the placeholder for an absent text field.
const Missing = "N/A"

// HasWallets reports whether both endpoints name a real wallet.
func (f Fields) HasWallets() bool {
	return f.WalletFrom != "" && f.WalletFrom != Missing &&
		f.WalletTo != "" && f.WalletTo != Missing
}

// Clone returns a deep copy of f.
func (f Fields) Clone() Fields {
	if f.Extra != nil {
		f.Extra = maps.Clone(f.Extra)
	}
	return f
}

// Record represents a live record.
type Record struct {
	ID ID
	Fields
}

// Patch is a partial update. Nil fields are left untouched; Extra entries are
// merged into the existing passthrough fields.
type Patch struct {
	Timestamp    *int64
	TimestampRaw *string
	Token        *string
	Price        *float64
	Volume       *float64
	WalletFrom   *string
	WalletTo     *string
	Status       *string
	Extra        map[string]string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Timestamp == nil && p.TimestampRaw == nil && p.Token == nil &&
		p.Price == nil && p.Volume == nil && p.WalletFrom == nil &&
		p.WalletTo == nil && p.Status == nil && len(p.Extra) == 0
}

// Apply returns a copy of f with the patch applied.
func (p Patch) Apply(f Fields) Fields {
	out := f.Clone()
	if p.Timestamp != nil {
		out.Timestamp = *p.Timestamp
	}
	if p.TimestampRaw != nil {
		out.TimestampRaw = *p.TimestampRaw
	}
	if p.Token != nil {
		out.Token = *p.Token
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Volume != nil {
		out.Volume = *p.Volume
	}
	if p.WalletFrom != nil {
		out.WalletFrom = *p.WalletFrom
	}
	if p.WalletTo != nil {
		out.WalletTo = *p.WalletTo
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if len(p.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(p.Extra))
		}
		maps.Copy(out.Extra, p.Extra)
	}
	return out
}

// PatchBuilder provides a fluent API for constructing patches.
type PatchBuilder struct {
	p Patch
}

// NewPatch starts an empty patch.
func NewPatch() *PatchBuilder {
	return &PatchBuilder{}
}

// WithTimestamp sets the timestamp.
func (b *PatchBuilder) WithTimestamp(ts int64) *PatchBuilder {
	b.p.Timestamp = &ts
	return b
}

// WithToken sets the token.
func (b *PatchBuilder) WithToken(token string) *PatchBuilder {
	b.p.Token = &token
	return b
}

// WithPrice sets the price.
func (b *PatchBuilder) WithPrice(price float64) *PatchBuilder {
	b.p.Price = &price
	return b
}

// WithVolume sets the volume.
func (b *PatchBuilder) WithVolume(volume float64) *PatchBuilder {
	b.p.Volume = &volume
	return b
}

// WithWalletFrom sets the sender wallet.
func (b *PatchBuilder) WithWalletFrom(wallet string) *PatchBuilder {
	b.p.WalletFrom = &wallet
	return b
}

// WithWalletTo sets the receiver wallet.
func (b *PatchBuilder) WithWalletTo(wallet string) *PatchBuilder {
	b.p.WalletTo = &wallet
	return b
}

// WithStatus sets the status.
func (b *PatchBuilder) WithStatus(status string) *PatchBuilder {
	b.p.Status = &status
	return b
}

// WithExtra sets a passthrough field.
func (b *PatchBuilder) WithExtra(key, value string) *PatchBuilder {
	if b.p.Extra == nil {
		b.p.Extra = make(map[string]string)
	}
	b.p.Extra[key] = value
	return b
}

// Build returns the constructed patch.
func (b *PatchBuilder) Build() Patch {
	return b.p
}
