package inventory

import "log/slog"

// ReconcileResult reports what Reconcile did with a candidate item.
type ReconcileResult struct {
	Item             Item
	Merged           bool
	PreviousQuantity string
}

// Reconcile decides whether an incoming candidate merges into an existing
// record or becomes a new one. A candidate merges when an item with the same
// name (case-insensitive) exists at the same location; the quantities are
// summed and the existing record updated in place. Anything else creates a
// new record. The whole decision runs under one lock so two concurrent
// creations of the same name+location cannot both miss the lookup.
func (s *Store) Reconcile(f Fields) ReconcileResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.findByNameAndLocation(f.Name, f.Location)
	if existing == nil {
		return ReconcileResult{Item: s.create(f)}
	}

	prev := existing.Quantity
	// Missing or unparseable quantities must not abort the merge: an existing
	// record with no usable quantity counts as 0, an incoming candidate with
	// none counts as 1.
	sum := parseQuantity(existing.Quantity, 0) + parseQuantity(f.Quantity, 1)
	existing.Quantity = formatQuantity(sum)

	slog.Info("STORE: Merged candidate into existing item",
		"id", existing.ID,
		"name", existing.Name,
		"location", existing.Location,
		"previous_quantity", prev,
		"quantity", existing.Quantity,
	)

	return ReconcileResult{
		Item:             *existing,
		Merged:           true,
		PreviousQuantity: prev,
	}
}
