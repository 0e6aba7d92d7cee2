package sanctions

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Registry holds the current sanctions snapshot. Lookups read one snapshot
// atomically; updates build a new snapshot and swap it in.
//
// Registry is safe for concurrent use.
type Registry struct {
	current atomic.Pointer[List]
	updated atomic.Int64 // unix nanoseconds

	// writeMu serializes read-modify-write updates.
	writeMu sync.Mutex
}

// StatusReport describes an address against the current snapshot.
type StatusReport struct {
	Address    common.Address `json:"address"`
	Sanctioned bool           `json:"sanctioned"`
	Root       common.Hash    `json:"root"`
	Total      int            `json:"total"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// NewRegistry creates a registry serving list. A nil list serves DefaultList.
func NewRegistry(list *List) *Registry {
	if list == nil {
		list = DefaultList()
	}
	r := &Registry{}
	r.store(list)
	return r
}

func (r *Registry) store(l *List) {
	r.current.Store(l)
	r.updated.Store(time.Now().UnixNano())
}

// Current returns the snapshot being served.
func (r *Registry) Current() *List {
	return r.current.Load()
}

// Root returns the root of the current snapshot.
func (r *Registry) Root() common.Hash {
	return r.Current().Root()
}

// UpdatedAt returns when the current snapshot was installed.
func (r *Registry) UpdatedAt() time.Time {
	return time.Unix(0, r.updated.Load())
}

// Status implements statement.SanctionsRegistry. The flag and the root come
// from the same snapshot.
func (r *Registry) Status(addr common.Address) (bool, common.Hash) {
	return r.Current().Status(addr)
}

// Report returns the status of addr with snapshot metadata.
func (r *Registry) Report(addr common.Address) StatusReport {
	l := r.Current()
	sanctioned, root := l.Status(addr)
	return StatusReport{
		Address:    addr,
		Sanctioned: sanctioned,
		Root:       root,
		Total:      l.Len(),
		UpdatedAt:  r.UpdatedAt(),
	}
}

// Replace installs list as the current snapshot.
func (r *Registry) Replace(list *List) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.store(list)
}

// Add sanctions addr and returns the new root.
func (r *Registry) Add(addr common.Address) (common.Hash, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := r.Current()
	if cur.Contains(addr) {
		return cur.Root(), nil
	}
	next, err := cur.with(addr)
	if err != nil {
		return common.Hash{}, err
	}
	r.store(next)
	return next.Root(), nil
}

// Remove lifts the sanction on addr and returns the new root.
func (r *Registry) Remove(addr common.Address) (common.Hash, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := r.Current()
	if !cur.Contains(addr) {
		return cur.Root(), nil
	}
	next, err := cur.without(addr)
	if err != nil {
		return common.Hash{}, err
	}
	r.store(next)
	return next.Root(), nil
}
