package test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/config"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/predicate"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/txn"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/vdb"
)

// model is a brute-force version store: a flat list of visible versions per
// relation, scanned linearly.
type model struct {
	versions [][]*entry
	live     []map[uint64]*entry
	mark     uint64
	marked   bool
}

type entry struct {
	stamp uint64
	cols  []uint64
}

func newModel(columnCounts []uint32) *model {
	m := &model{
		versions: make([][]*entry, len(columnCounts)),
		live:     make([]map[uint64]*entry, len(columnCounts)),
	}
	for i := range m.live {
		m.live[i] = make(map[uint64]*entry)
	}
	return m
}

func (m *model) forgotten(stamp uint64) bool {
	return m.marked && stamp <= m.mark
}

func (m *model) remove(rel uint32, e *entry) {
	list := m.versions[rel]
	for i, o := range list {
		if o == e {
			m.versions[rel] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (m *model) add(rel uint32, e *entry) {
	if !m.forgotten(e.stamp) {
		m.versions[rel] = append(m.versions[rel], e)
	}
}

func (m *model) apply(desc *vdb.TransactionDesc) {
	for _, batch := range desc.Deletes {
		for _, key := range batch.Keys {
			e, ok := m.live[batch.Relation][key]
			if !ok {
				continue
			}
			delete(m.live[batch.Relation], key)
			m.add(batch.Relation, &entry{stamp: desc.ID, cols: e.cols})
		}
	}
	for _, batch := range desc.Inserts {
		for _, row := range batch.Rows {
			if old, ok := m.live[batch.Relation][row[0]]; ok {
				m.remove(batch.Relation, old)
			}
			e := &entry{stamp: desc.ID, cols: row}
			m.live[batch.Relation][row[0]] = e
			m.add(batch.Relation, e)
		}
	}
}

func (m *model) forget(ref uint64) {
	if m.marked && ref <= m.mark {
		return
	}
	m.mark, m.marked = ref, true
	for rel, list := range m.versions {
		kept := list[:0]
		for _, e := range list {
			if e.stamp > ref {
				kept = append(kept, e)
			}
		}
		m.versions[rel] = kept
	}
}

func (m *model) validate(desc *vdb.ValidationDesc) byte {
	for _, clause := range desc.Clauses {
		for _, e := range m.versions[clause.Relation] {
			if e.stamp < desc.From || e.stamp > desc.To {
				continue
			}
			if predicate.NewSet(clause.Predicates).Matches(e.cols) {
				return '1'
			}
		}
	}
	return '0'
}

type workload struct {
	r            *rand.Rand
	columnCounts []uint32
	keys         uint64
	values       uint64
}

func (w *workload) txn(id uint64) *vdb.TransactionDesc {
	desc := &vdb.TransactionDesc{ID: id}
	for i := w.r.Intn(3); i > 0; i-- {
		batch := txn.DeleteBatch{Relation: uint32(w.r.Intn(len(w.columnCounts)))}
		for j := w.r.Intn(3) + 1; j > 0; j-- {
			batch.Keys = append(batch.Keys, uint64(w.r.Int63n(int64(w.keys))))
		}
		desc.Deletes = append(desc.Deletes, batch)
	}
	for i := w.r.Intn(3); i > 0; i-- {
		rel := uint32(w.r.Intn(len(w.columnCounts)))
		batch := txn.InsertBatch{Relation: rel}
		seen := make(map[uint64]bool)
		for j := w.r.Intn(3) + 1; j > 0; j-- {
			row := make([]uint64, w.columnCounts[rel])
			row[0] = uint64(w.r.Int63n(int64(w.keys)))
			if seen[row[0]] {
				continue
			}
			seen[row[0]] = true
			for c := 1; c < len(row); c++ {
				row[c] = uint64(w.r.Int63n(int64(w.values)))
			}
			batch.Rows = append(batch.Rows, row)
		}
		desc.Inserts = append(desc.Inserts, batch)
	}
	return desc
}

func (w *workload) validation(id, last uint64) *vdb.ValidationDesc {
	from := uint64(w.r.Int63n(int64(last) + 2))
	desc := &vdb.ValidationDesc{ID: id, From: from, To: from + uint64(w.r.Intn(8))}
	for i := w.r.Intn(5); i > 0; i-- {
		rel := uint32(w.r.Intn(len(w.columnCounts)))
		clause := vdb.ClauseDesc{Relation: rel}
		for j := w.r.Intn(3); j > 0; j-- {
			clause.Predicates = append(clause.Predicates, predicate.Predicate{
				Column: uint32(w.r.Intn(int(w.columnCounts[rel]))),
				Op:     predicate.Op(w.r.Intn(6)),
				Value:  uint64(w.r.Int63n(int64(w.values))),
			})
		}
		desc.Clauses = append(desc.Clauses, clause)
	}
	return desc
}

func runWorkload(t *testing.T, seed int64, workers int) {
	columnCounts := []uint32{1, 2, 3, 4}
	w := &workload{r: rand.New(rand.NewSource(seed)), columnCounts: columnCounts, keys: 16, values: 8}

	opts := config.Default()
	opts.Workers = workers
	opts.ParallelClauses = 2
	opts.IndexDegree = 4
	db, err := vdb.Open(opts)
	require.Nil(t, err)
	defer db.Close()
	require.Nil(t, db.DefineSchema(&vdb.SchemaDesc{ColumnCounts: columnCounts}))
	m := newModel(columnCounts)

	var got, expected bytes.Buffer
	var txnID, validationID, released uint64
	for step := 0; step < 2000; step++ {
		switch k := w.r.Intn(10); {
		case k < 5:
			txnID++
			desc := w.txn(txnID)
			require.Nil(t, db.ApplyTransaction(desc))
			m.apply(desc)
		case k < 8:
			validationID++
			desc := w.validation(validationID, txnID)
			require.Nil(t, db.Validate(desc))
			expected.WriteByte(m.validate(desc))
		case k < 9:
			released = validationID
			_, err := db.Release(&got, &vdb.FlushDesc{Reference: released})
			require.Nil(t, err)
		default:
			ref := uint64(w.r.Int63n(int64(txnID) + 1))
			require.Nil(t, db.SetRetentionMark(&vdb.ForgetDesc{Reference: ref}))
			m.forget(ref)
		}
	}
	_, err = db.Release(&got, &vdb.FlushDesc{Reference: validationID})
	require.Nil(t, err)
	require.Equal(t, expected.Len(), got.Len())
	assert.Equal(t, expected.String(), got.String())
	t.Log(db.Metrics().String())
}

func TestAgainstModel(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		runWorkload(t, seed, 0)
	}
}

func TestAgainstModelParallel(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		runWorkload(t, seed, 4)
	}
}
