package testutil

import (
	"slices"

	"github.com/hupe1980/ledgerdb/model"
)

// Oracle tracks the expected contents of the secondary indexes for a stream
// of inserts, updates and deletes, using brute-force scans.
type Oracle struct {
	live map[model.ID]model.Fields
	// tsSeq orders records sharing a timestamp by when they entered that key.
	tsSeq map[model.ID]int
	seq   int
}

// NewOracle creates an empty oracle.
func NewOracle() *Oracle {
	return &Oracle{
		live:  make(map[model.ID]model.Fields),
		tsSeq: make(map[model.ID]int),
	}
}

// Insert records a new live record.
func (o *Oracle) Insert(id model.ID, f model.Fields) {
	o.live[id] = f.Clone()
	o.seq++
	o.tsSeq[id] = o.seq
}

// Update replaces the fields of a live record.
func (o *Oracle) Update(id model.ID, f model.Fields) {
	old := o.live[id]
	o.live[id] = f.Clone()
	if old.Timestamp != f.Timestamp {
		o.seq++
		o.tsSeq[id] = o.seq
	}
}

// Delete drops a record.
func (o *Oracle) Delete(id model.ID) {
	delete(o.live, id)
	delete(o.tsSeq, id)
}

// IsLive reports whether id is live.
func (o *Oracle) IsLive(id model.ID) bool {
	_, ok := o.live[id]
	return ok
}

// Live returns the live IDs in ascending order.
func (o *Oracle) Live() []model.ID {
	ids := make([]model.ID, 0, len(o.live))
	for id := range o.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Fields returns the fields of a live record.
func (o *Oracle) Fields(id model.ID) (model.Fields, bool) {
	f, ok := o.live[id]
	return f, ok
}

func (o *Oracle) filter(keep func(model.Fields) bool) []model.ID {
	var ids []model.ID
	for id, f := range o.live {
		if keep(f) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// ByToken returns the live IDs for token in ascending ID order.
func (o *Oracle) ByToken(token string) []model.ID {
	return o.filter(func(f model.Fields) bool { return f.Token == token })
}

// BySender returns the live IDs sent from wallet in ascending ID order.
func (o *Oracle) BySender(wallet string) []model.ID {
	return o.filter(func(f model.Fields) bool { return f.WalletFrom == wallet })
}

// RangeByTimestamp returns the live IDs with start <= timestamp <= end
// ordered by timestamp and then by the order they entered that timestamp.
func (o *Oracle) RangeByTimestamp(start, end int64) []model.ID {
	ids := o.filter(func(f model.Fields) bool { return f.Timestamp >= start && f.Timestamp <= end })
	slices.SortFunc(ids, func(a, b model.ID) int {
		ta, tb := o.live[a].Timestamp, o.live[b].Timestamp
		if ta != tb {
			if ta < tb {
				return -1
			}
			return 1
		}
		return o.tsSeq[a] - o.tsSeq[b]
	})
	return ids
}
