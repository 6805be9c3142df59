package vehicle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewService(store)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	svc.nowFn = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc, store
}

func TestAdd_NewDefaultDemotesPrior(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Add(ctx, AddCommand{OwnerID: "u1", Plate: "abc 123", IsDefault: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if first.Plate != "ABC 123" {
		t.Errorf("plate = %q, want normalized upper case", first.Plate)
	}

	second, err := svc.Add(ctx, AddCommand{OwnerID: "u1", Plate: "XYZ 789", IsDefault: true})
	if err != nil {
		t.Fatalf("Add() second default error = %v", err)
	}

	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d vehicles, want 2", len(list))
	}
	defaults := 0
	for _, v := range list {
		if v.IsDefault {
			defaults++
			if v.ID != second.ID {
				t.Errorf("default is %s, want the newer vehicle %s", v.ID, second.ID)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("owner holds %d defaults, want exactly 1", defaults)
	}
}

func TestList_DefaultFirstThenNewest(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Add(ctx, AddCommand{OwnerID: "u1", Plate: "AAA"})
	b, _ := svc.Add(ctx, AddCommand{OwnerID: "u1", Plate: "BBB", IsDefault: true})
	c, _ := svc.Add(ctx, AddCommand{OwnerID: "u1", Plate: "CCC"})

	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{string(b.ID), string(c.ID), string(a.ID)}
	for i, v := range list {
		if string(v.ID) != want[i] {
			t.Errorf("list[%d] = %s, want %s", i, v.ID, want[i])
		}
	}
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newTestService()
	tests := []struct {
		name string
		cmd  AddCommand
	}{
		{"missing owner", AddCommand{Plate: "ABC"}},
		{"missing plate", AddCommand{OwnerID: "u1"}},
		{"blank plate", AddCommand{OwnerID: "u1", Plate: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(context.Background(), tt.cmd); !errors.Is(err, ErrBadRequest) {
				t.Errorf("Add() error = %v, want ErrBadRequest", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	v, _ := svc.Add(ctx, AddCommand{OwnerID: "u1", Plate: "ABC"})
	if err := svc.Delete(ctx, "u1", v.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, "u1", v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
	// Another owner's vehicle must be unreachable.
	v2, _ := svc.Add(ctx, AddCommand{OwnerID: "u2", Plate: "OTHER", Nickname: strPtr("spare")})
	if err := svc.Delete(ctx, "u1", v2.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner Delete() error = %v, want ErrNotFound", err)
	}
}
