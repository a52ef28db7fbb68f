package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestStore_CreateDefaults(t *testing.T) {
	s := NewStore()
	s.now = fixedClock()

	it := s.Create(Fields{Name: "egg", Location: LocationFridge})

	assert.Equal(t, 1, it.ID)
	assert.Equal(t, "egg", it.Name)
	assert.Equal(t, "1", it.Quantity)
	assert.Equal(t, "", it.Unit)
	assert.Equal(t, 0, it.Confidence)
	assert.Nil(t, it.ExpiryDate)
	assert.Equal(t, s.now(), it.AddedDate)

	it2 := s.Create(Fields{Name: "milk", Location: LocationFridge, Quantity: "2", Unit: "l"})
	assert.Equal(t, 2, it2.ID)
	assert.Equal(t, "2", it2.Quantity)
	assert.Equal(t, "l", it2.Unit)
}

func TestStore_ListOrderAndLocationFilter(t *testing.T) {
	s := NewStore()
	s.Create(Fields{Name: "egg", Location: LocationFridge})
	s.Create(Fields{Name: "rice", Location: LocationCabinet})
	s.Create(Fields{Name: "milk", Location: LocationFridge})

	all := s.List()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"egg", "rice", "milk"}, []string{all[0].Name, all[1].Name, all[2].Name})

	fridge := s.ListByLocation(LocationFridge)
	require.Len(t, fridge, 2)
	assert.Equal(t, "egg", fridge[0].Name)
	assert.Equal(t, "milk", fridge[1].Name)

	assert.Empty(t, NewStore().ListByLocation(LocationCabinet))
}

func TestStore_GetByName(t *testing.T) {
	s := NewStore()
	s.Create(Fields{Name: "Egg", Location: LocationFridge})
	s.Create(Fields{Name: "egg", Location: LocationCabinet})

	it, ok := s.GetByName("EGG")
	require.True(t, ok)
	assert.Equal(t, 1, it.ID, "first match in insertion order wins")

	_, ok = s.GetByName("butter")
	assert.False(t, ok)
}

func TestStore_UpdatePartial(t *testing.T) {
	s := NewStore()
	expiry := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	created := s.Create(Fields{Name: "egg", Location: LocationFridge, Quantity: "6", Unit: "pcs", ExpiryDate: &expiry})

	qty := "5"
	updated, ok := s.Update(created.ID, Patch{Quantity: &qty})
	require.True(t, ok)

	assert.Equal(t, "5", updated.Quantity)
	assert.Equal(t, "egg", updated.Name)
	assert.Equal(t, LocationFridge, updated.Location)
	assert.Equal(t, "pcs", updated.Unit)
	require.NotNil(t, updated.ExpiryDate)
	assert.Equal(t, expiry, *updated.ExpiryDate)
	assert.Equal(t, created.AddedDate, updated.AddedDate)
}

func TestStore_UpdateAbsent(t *testing.T) {
	s := NewStore()
	name := "egg"
	_, ok := s.Update(42, Patch{Name: &name})
	assert.False(t, ok)
}

func TestStore_DeleteIdempotent(t *testing.T) {
	s := NewStore()
	it := s.Create(Fields{Name: "egg", Location: LocationFridge})

	assert.True(t, s.Delete(it.ID))

	_, ok := s.GetByID(it.ID)
	assert.False(t, ok)

	assert.False(t, s.Delete(it.ID), "second delete reports false, never panics")
}

func TestStore_IdentityNeverReused(t *testing.T) {
	s := NewStore()
	first := s.Create(Fields{Name: "egg", Location: LocationFridge})
	s.Delete(first.ID)

	second := s.Create(Fields{Name: "milk", Location: LocationFridge})
	assert.Greater(t, second.ID, first.ID)
}

func TestStore_ExpiringWithin(t *testing.T) {
	s := NewStore()
	s.now = fixedClock()

	soon := s.now().AddDate(0, 0, 2)
	later := s.now().AddDate(0, 0, 30)
	past := s.now().AddDate(0, 0, -1)

	s.Create(Fields{Name: "milk", Location: LocationFridge, ExpiryDate: &soon})
	s.Create(Fields{Name: "rice", Location: LocationCabinet, ExpiryDate: &later})
	s.Create(Fields{Name: "yogurt", Location: LocationFridge, ExpiryDate: &past})
	s.Create(Fields{Name: "salt", Location: LocationCabinet})

	expiring := s.ExpiringWithin(3)
	require.Len(t, expiring, 2)
	assert.Equal(t, "milk", expiring[0].Name)
	assert.Equal(t, "yogurt", expiring[1].Name)
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := NewStore()
	s.Create(Fields{Name: "egg", Location: LocationFridge, Quantity: "6"})
	s.Create(Fields{Name: "rice", Location: LocationCabinet})

	snap := s.Snapshot()

	restored := NewStore()
	restored.Restore(snap)

	assert.Equal(t, snap, restored.Snapshot())

	// Counter resumes past the highest restored id.
	next := restored.Create(Fields{Name: "milk", Location: LocationFridge})
	assert.Equal(t, 3, next.ID)
}
