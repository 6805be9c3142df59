// README: Location ledger tests (single-active invariant, soft delete, offline fallback).
package location

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"kerb/internal/types"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func testPosition(lat, lng float64) types.GeoPosition {
	return types.GeoPosition{Latitude: lat, Longitude: lng, Accuracy: floatPtr(12)}
}

func TestSave_DeactivatesPriorActive(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()
	owner := types.ID("u1")

	first, err := svc.Save(ctx, SaveCommand{OwnerID: owner, Position: testPosition(28.4177, -81.5812)})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := svc.Save(ctx, SaveCommand{OwnerID: owner, Position: testPosition(28.4190, -81.5800)})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	if got := store.ActiveCount(owner); got != 1 {
		t.Errorf("active records after second save = %d, want 1", got)
	}
	// History is preserved: the prior record is deactivated, never deleted.
	if store.Len() != 2 {
		t.Errorf("stored records = %d, want 2", store.Len())
	}
	if first.ID == second.ID {
		t.Errorf("expected distinct record ids")
	}
	if active := svc.Active(owner); active == nil || active.ID != second.ID {
		t.Errorf("active slot = %+v, want record %s", active, second.ID)
	}
}

func TestDelete_IsLogical(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	loc, err := svc.Save(ctx, SaveCommand{OwnerID: "u1", Position: testPosition(28.41, -81.58)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Delete(ctx, "u1", loc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if svc.Active("u1") != nil {
		t.Errorf("active slot not cleared after delete")
	}
	if store.Len() != 1 {
		t.Errorf("record physically removed; want logical delete only")
	}
	if store.ActiveCount("u1") != 0 {
		t.Errorf("record still active after delete")
	}
}

func TestDelete_Missing(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if err := svc.Delete(context.Background(), "u1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing = %v, want ErrNotFound", err)
	}
}

func TestDelete_OtherOwnersRecord(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	loc, err := svc.Save(ctx, SaveCommand{OwnerID: "u1", Position: testPosition(28.41, -81.58)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Delete(ctx, "u2", loc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete by non-owner = %v, want ErrNotFound", err)
	}
	if store.ActiveCount("u1") != 1 {
		t.Errorf("owner's record was deactivated by a non-owner")
	}
	if active := svc.Active("u1"); active == nil || active.ID != loc.ID {
		t.Errorf("owner's active slot disturbed by a non-owner delete: %+v", active)
	}
}

func TestUpdate_PatchesAndReloads(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	loc, err := svc.Save(ctx, SaveCommand{OwnerID: "u1", Position: testPosition(28.41, -81.58)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Update(ctx, "u1", loc.ID, Patch{Notes: strPtr("level 3, by the elevator")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	active := svc.Active("u1")
	if active == nil || active.Notes == nil || *active.Notes != "level 3, by the elevator" {
		t.Errorf("active record not reloaded with patched notes: %+v", active)
	}
}

func TestUpdate_OtherOwnersRecord(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	loc, err := svc.Save(ctx, SaveCommand{OwnerID: "u1", Position: testPosition(28.41, -81.58)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	err = svc.Update(ctx, "u2", loc.ID, Patch{Notes: strPtr("hijacked")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("update by non-owner = %v, want ErrNotFound", err)
	}
	if active := svc.Active("u1"); active != nil && active.Notes != nil {
		t.Errorf("record patched by a non-owner: %+v", active)
	}
}

// failingStore simulates an unreachable remote.
type failingStore struct{}

var errDown = errors.New("store unreachable")

func (failingStore) ActiveByOwner(context.Context, types.ID) (*SavedLocation, error) {
	return nil, errDown
}
func (failingStore) DeactivateActive(context.Context, types.ID) error { return errDown }
func (failingStore) Insert(context.Context, *SavedLocation) (*SavedLocation, error) {
	return nil, errDown
}
func (failingStore) Patch(context.Context, types.ID, types.ID, Patch) error { return errDown }
func (failingStore) Deactivate(context.Context, types.ID, types.ID) error   { return errDown }

func TestFetchActive_FallsBackToOfflineCache(t *testing.T) {
	svc := NewService(failingStore{})

	cached := &SavedLocation{
		ID:        "cached1",
		OwnerID:   "u1",
		Position:  testPosition(28.41, -81.58),
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	svc.CacheOffline(cached)

	got, fromCache, err := svc.FetchActive(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected graceful fallback, got error: %v", err)
	}
	if got == nil || got.ID != "cached1" {
		t.Fatalf("fallback record = %+v, want cached1", got)
	}
	if !fromCache {
		t.Errorf("fallback not reported as served from cache")
	}
	if svc.LastError("u1") == "" {
		t.Errorf("remote failure not retained in LastError")
	}
}

func TestFetchActive_FallbackIsOwnerScoped(t *testing.T) {
	svc := NewService(failingStore{})

	svc.CacheOffline(&SavedLocation{ID: "b-loc", OwnerID: "userB"})

	// userA must never be answered with userB's car.
	got, _, err := svc.FetchActive(context.Background(), "userA")
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("err = %v, want ErrRemoteUnavailable when only another owner is cached", err)
	}
	if got != nil {
		t.Fatalf("FetchActive(userA) returned record owned by %s (id=%s)", got.OwnerID, got.ID)
	}

	got, fromCache, err := svc.FetchActive(context.Background(), "userB")
	if err != nil || !fromCache || got == nil || got.ID != "b-loc" {
		t.Fatalf("owner's own cached record not served: got=%+v fromCache=%v err=%v", got, fromCache, err)
	}
}

func TestFetchActive_RemoteDownAndCacheEmpty(t *testing.T) {
	svc := NewService(failingStore{})
	_, _, err := svc.FetchActive(context.Background(), "u1")
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("err = %v, want ErrRemoteUnavailable", err)
	}
}

func TestFetchActive_ReturnsNewestCachedEntry(t *testing.T) {
	svc := NewService(failingStore{})
	for i := 0; i < 3; i++ {
		svc.CacheOffline(&SavedLocation{
			ID:      types.ID(fmt.Sprintf("c%d", i)),
			OwnerID: "u1",
		})
	}
	// Another owner's newer entry must not shadow u1's newest.
	svc.CacheOffline(&SavedLocation{ID: "other", OwnerID: "u2"})

	got, _, err := svc.FetchActive(context.Background(), "u1")
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if got.ID != "c2" {
		t.Errorf("fallback record = %s, want most recently cached c2", got.ID)
	}
}

func TestLastError_PerOwner(t *testing.T) {
	svc := NewService(failingStore{})
	_, _, _ = svc.FetchActive(context.Background(), "u1")

	if svc.LastError("u1") == "" {
		t.Errorf("failure not retained for the owner who hit it")
	}
	if svc.LastError("u2") != "" {
		t.Errorf("u1's failure leaked into u2's view: %q", svc.LastError("u2"))
	}
}

func TestOfflineCache_BoundedMostRecentFirst(t *testing.T) {
	cache := NewOfflineCache()
	for i := 0; i < 7; i++ {
		cache.Put(&SavedLocation{ID: types.ID(fmt.Sprintf("c%d", i)), OwnerID: "u1"})
	}

	if cache.Len() != 5 {
		t.Fatalf("cache len = %d, want capacity 5", cache.Len())
	}
	if _, ok := cache.Get("c0"); ok {
		t.Errorf("oldest entry c0 survived past capacity")
	}
	if _, ok := cache.Get("c1"); ok {
		t.Errorf("entry c1 survived past capacity")
	}
	newest, ok := cache.Newest("u1")
	if !ok || newest.ID != "c6" {
		t.Errorf("newest = %+v, want c6", newest)
	}

	// Re-putting an existing id replaces it at the front rather than
	// growing the cache.
	cache.Put(&SavedLocation{ID: "c3", OwnerID: "u1"})
	if cache.Len() != 5 {
		t.Errorf("cache len after re-put = %d, want 5", cache.Len())
	}
	newest, _ = cache.Newest("u1")
	if newest.ID != "c3" {
		t.Errorf("newest after re-put = %s, want c3", newest.ID)
	}
}

func TestFetchActive_NoActiveRecord(t *testing.T) {
	svc := NewService(NewMemoryStore())
	got, _, err := svc.FetchActive(context.Background(), "u1")
	if err != nil {
		t.Fatalf("fetch with no record: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil when owner has no active record", got)
	}
}
