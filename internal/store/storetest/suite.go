package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	username := "u-" + uuid.New().String()

	// Users
	u, err := s.Users().Create(ctx, &model.User{Username: username})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.UserID == "" {
		t.Fatalf("CreateUser: empty user id")
	}
	if got, err := s.Users().Get(ctx, u.UserID); err != nil || got.Username != username {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByUsername(ctx, username); err != nil || got.UserID != u.UserID {
		t.Fatalf("GetUserByUsername: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser(missing): err=%v, want ErrNotFound", err)
	}

	// CV create with sections
	in := &model.CV{
		UserID:  u.UserID,
		Email:   strPtr("owner@example.test"),
		Summary: strPtr("initial"),
		Skills:  []string{"Go", "SQL"},
		Experience: []model.Experience{
			{Company: "Acme", Position: "Engineer", StartDate: "2021-02-01"},
		},
	}
	cv, err := s.CVs().Create(ctx, in)
	if err != nil {
		t.Fatalf("CreateCV: %v", err)
	}
	if cv.CVID == "" || cv.CreatedAt.IsZero() || cv.UpdatedAt.IsZero() {
		t.Fatalf("CreateCV: incomplete row %+v", cv)
	}

	// Sections survive the serialize/deserialize boundary.
	got, err := s.CVs().Get(ctx, cv.CVID)
	if err != nil {
		t.Fatalf("GetCV: %v", err)
	}
	if got.FullName != nil {
		t.Fatalf("GetCV: full_name should be null, got %q", *got.FullName)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "Go" {
		t.Fatalf("GetCV: skills round trip failed: %v", got.Skills)
	}
	if len(got.Experience) != 1 || got.Experience[0].Company != "Acme" {
		t.Fatalf("GetCV: experience round trip failed: %v", got.Experience)
	}

	// ListByOwner
	if lst, err := s.CVs().ListByOwner(ctx, u.UserID); err != nil || len(lst) != 1 {
		t.Fatalf("ListByOwner: n=%d err=%v", len(lst), err)
	}

	// Versioned update
	next := *got
	next.Summary = strPtr("updated")
	next.Skills = []string{"Go"}
	next.UpdatedAt = got.UpdatedAt.Add(time.Millisecond)
	upd, err := s.CVs().Update(ctx, &next, got.UpdatedAt)
	if err != nil {
		t.Fatalf("UpdateCV: %v", err)
	}
	if *upd.Summary != "updated" || len(upd.Skills) != 1 {
		t.Fatalf("UpdateCV: row not updated: %+v", upd)
	}
	if !upd.UpdatedAt.After(got.UpdatedAt) {
		t.Fatalf("UpdateCV: updated_at did not advance: %v -> %v", got.UpdatedAt, upd.UpdatedAt)
	}

	// Stale version is a conflict, not a silent overwrite.
	stale := *got
	stale.Summary = strPtr("stale write")
	stale.UpdatedAt = upd.UpdatedAt.Add(time.Millisecond)
	if _, err := s.CVs().Update(ctx, &stale, got.UpdatedAt); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("UpdateCV(stale): err=%v, want ErrConflict", err)
	}

	// Delete
	if err := s.CVs().Delete(ctx, cv.CVID); err != nil {
		t.Fatalf("DeleteCV: %v", err)
	}
	if _, err := s.CVs().Get(ctx, cv.CVID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetCV after delete: err=%v, want ErrNotFound", err)
	}
	if err := s.CVs().Delete(ctx, cv.CVID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteCV twice: err=%v, want ErrNotFound", err)
	}
	if _, err := s.CVs().Update(ctx, &next, next.UpdatedAt); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateCV after delete: err=%v, want ErrNotFound", err)
	}
}

func strPtr(s string) *string { return &s }
