package graph

import (
	"reflect"

	"github.com/scenewire/scenewire/internal/meta"
)

// TransactionManager scopes undoable mutations. The pipeline opens one
// transaction per write, snapshots the target field before changing it, and
// closes the transaction on every exit path. Closed transactions stack up
// for undo, most recent first.
//
// Transactions do not nest; the graph has one writer and writes are
// serialized.
type TransactionManager struct {
	reg  *meta.Registry
	undo []*Transaction
}

func NewTransactionManager(reg *meta.Registry) *TransactionManager {
	return &TransactionManager{reg: reg}
}

// Transaction records pre-write field snapshots until closed.
type Transaction struct {
	Name   string
	mgr    *TransactionManager
	snaps  []snapshot
	closed bool
}

type snapshot struct {
	obj   any
	field string
	prev  any
}

// Begin opens a named transaction.
func (m *TransactionManager) Begin(name string) *Transaction {
	return &Transaction{Name: name, mgr: m}
}

// Snapshot marks obj as about-to-change by recording the current value of
// the named field. Unknown fields are ignored; the apply step will fail on
// them anyway.
func (t *Transaction) Snapshot(obj any, field string) {
	if t.closed {
		return
	}
	prev, err := t.mgr.reg.Get(obj, field)
	if err != nil {
		return
	}
	t.snaps = append(t.snaps, snapshot{obj: obj, field: field, prev: copyValue(prev)})
}

// Close ends the transaction. Idempotent; a transaction that recorded at
// least one snapshot becomes undoable.
func (t *Transaction) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if len(t.snaps) > 0 {
		t.mgr.undo = append(t.mgr.undo, t)
	}
}

// Undo restores the snapshots of the most recently closed transaction, in
// reverse recording order.
func (m *TransactionManager) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	t := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	for i := len(t.snaps) - 1; i >= 0; i-- {
		s := t.snaps[i]
		_ = m.reg.Set(s.obj, s.field, s.prev)
	}
	return true
}

// Depth reports how many transactions are undoable.
func (m *TransactionManager) Depth() int { return len(m.undo) }

// copyValue detaches slice snapshots from the live backing array so a later
// in-place write cannot corrupt the recorded previous value.
func copyValue(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return v
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	return out.Interface()
}
