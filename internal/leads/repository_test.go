package leads

import (
	"context"
	"testing"
)

func TestCreateAssignsID(t *testing.T) {
	repo := NewInMemoryRepository()

	lead, err := repo.Create(context.Background(), &Lead{
		FirstName: DefaultFirstName,
		Source:    SourceMissedCalls,
		MobileNo:  "919876500000",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.ID == "" {
		t.Error("expected generated id")
	}
	if lead.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestCreateRequiresMobile(t *testing.T) {
	repo := NewInMemoryRepository()

	if _, err := repo.Create(context.Background(), &Lead{FirstName: "X"}); err != ErrMissingMobile {
		t.Fatalf("expected ErrMissingMobile, got %v", err)
	}
}

func TestFindByMobileMultiple(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		if _, err := repo.Create(ctx, &Lead{FirstName: name, MobileNo: "919876500000"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := repo.Create(ctx, &Lead{FirstName: "C", MobileNo: "919999999999"}); err != nil {
		t.Fatal(err)
	}

	found, err := repo.FindByMobile(ctx, "919876500000")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(found))
	}

	exists, err := repo.ExistsByMobile(ctx, "919876500000")
	if err != nil || !exists {
		t.Fatalf("exists = %v, err = %v", exists, err)
	}
	exists, err = repo.ExistsByMobile(ctx, "910000000000")
	if err != nil || exists {
		t.Fatalf("expected not exists, got %v %v", exists, err)
	}
}

func TestSaveHistoryEntryUpsert(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.Create(ctx, &Lead{MobileNo: "919876500000"})
	if err != nil {
		t.Fatal(err)
	}

	first := CallingHistoryEntry{CallID: "C1", Status: "Missed", Duration: 0}
	if err := repo.SaveHistoryEntry(ctx, lead.ID, first); err != nil {
		t.Fatal(err)
	}

	second := CallingHistoryEntry{CallID: "C1", Status: "Answered", Duration: 30}
	if err := repo.SaveHistoryEntry(ctx, lead.ID, second); err != nil {
		t.Fatal(err)
	}

	history, err := repo.History(ctx, lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry after upsert, got %d", len(history))
	}
	if history[0].Status != "Answered" || history[0].Duration != 30 {
		t.Errorf("entry not updated in place: %+v", history[0])
	}
}

func TestSetCallID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	lead, err := repo.Create(ctx, &Lead{MobileNo: "919876500000"})
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.SetCallID(ctx, lead.ID, "C77"); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetByID(ctx, lead.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CallID != "C77" {
		t.Errorf("call id = %q", got.CallID)
	}

	if err := repo.SetCallID(ctx, lead.ID, ""); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.GetByID(ctx, lead.ID)
	if got.CallID != "" {
		t.Errorf("call id not cleared: %q", got.CallID)
	}

	if err := repo.SetCallID(ctx, "nope", "C1"); err != ErrLeadNotFound {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}
