package inventory

import (
	"strings"
	"sync"
	"time"
)

// Store is an in-memory keyed collection of inventory items. All access goes
// through the mutex; handlers run concurrently and the lookup+mutate pair in
// Reconcile must not interleave.
type Store struct {
	mu     sync.RWMutex
	items  map[int]*Item
	order  []int
	nextID int
	now    func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		items:  make(map[int]*Item),
		nextID: 1,
		now:    time.Now,
	}
}

// List returns all items in insertion order.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// ListByLocation returns items whose location matches exactly.
func (s *Store) ListByLocation(loc Location) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0)
	for _, id := range s.order {
		if s.items[id].Location == loc {
			out = append(out, *s.items[id])
		}
	}
	return out
}

// GetByID returns the item with the given identity.
func (s *Store) GetByID(id int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// GetByName returns the first item whose name matches case-insensitively.
// Names are not unique; this is the reconciliation lookup, not a keyed get.
func (s *Store) GetByName(name string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if it := s.findByName(name); it != nil {
		return *it, true
	}
	return Item{}, false
}

// findByName scans insertion order. Caller must hold at least a read lock.
func (s *Store) findByName(name string) *Item {
	for _, id := range s.order {
		if strings.EqualFold(s.items[id].Name, name) {
			return s.items[id]
		}
	}
	return nil
}

// findByNameAndLocation is the reconciliation lookup: the same name in the
// other location is a distinct record, not a merge target. Caller must hold
// at least a read lock.
func (s *Store) findByNameAndLocation(name string, loc Location) *Item {
	for _, id := range s.order {
		it := s.items[id]
		if it.Location == loc && strings.EqualFold(it.Name, name) {
			return it
		}
	}
	return nil
}

// Create assigns the next identity and the added date, defaults the quantity
// to "1", and stores the item. Optional fields stay at their explicit zero
// values so serialization is consistent.
func (s *Store) Create(f Fields) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(f)
}

// create inserts without locking. Caller must hold the write lock.
func (s *Store) create(f Fields) Item {
	if f.Quantity == "" {
		f.Quantity = "1"
	}

	it := &Item{
		ID:         s.nextID,
		Name:       f.Name,
		Location:   f.Location,
		Quantity:   f.Quantity,
		Unit:       f.Unit,
		Confidence: f.Confidence,
		AddedDate:  s.now(),
		ExpiryDate: f.ExpiryDate,
	}
	s.nextID++
	s.items[it.ID] = it
	s.order = append(s.order, it.ID)
	return *it
}

// Update applies the non-nil fields of the patch to the stored record.
// AddedDate and ID are immutable.
func (s *Store) Update(id int, p Patch) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return Item{}, false
	}
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Location != nil {
		it.Location = *p.Location
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		it.Unit = *p.Unit
	}
	if p.Confidence != nil {
		it.Confidence = *p.Confidence
	}
	if p.ExpiryDate != nil {
		it.ExpiryDate = p.ExpiryDate
	}
	return *it, true
}

// Delete removes the record. Identities are never reused, so a second delete
// of the same id reports false rather than failing.
func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// ExpiringWithin returns items whose expiry date falls inside the next n days
// (items already past expiry included).
func (s *Store) ExpiringWithin(days int) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().AddDate(0, 0, days)
	out := make([]Item, 0)
	for _, id := range s.order {
		it := s.items[id]
		if it.ExpiryDate != nil && !it.ExpiryDate.After(cutoff) {
			out = append(out, *it)
		}
	}
	return out
}

// Snapshot returns all items for persistence.
func (s *Store) Snapshot() []Item {
	return s.List()
}

// Restore replaces the store contents from a snapshot. The identity counter
// resumes past the highest restored id so identities are never reused.
func (s *Store) Restore(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int]*Item, len(items))
	s.order = s.order[:0]
	s.nextID = 1
	for i := range items {
		it := items[i]
		s.items[it.ID] = &it
		s.order = append(s.order, it.ID)
		if it.ID >= s.nextID {
			s.nextID = it.ID + 1
		}
	}
}
