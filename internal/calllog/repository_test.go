package calllog

import (
	"context"
	"sync"
	"testing"
)

func TestInMemoryInsertOnce(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, &Record{CallID: "C1", Status: StatusAnswered})
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	inserted, err = repo.Insert(ctx, &Record{CallID: "C1", Status: StatusMissed})
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Fatal("duplicate call id must not insert")
	}

	rec, err := repo.GetByCallID(ctx, "C1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Status != StatusAnswered {
		t.Errorf("duplicate insert must not overwrite, got status %s", rec.Status)
	}
	if repo.Count() != 1 {
		t.Errorf("expected 1 record, got %d", repo.Count())
	}
}

func TestInMemoryConcurrentInsertSameCallID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	winners := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := repo.Insert(ctx, &Record{CallID: "C-race"})
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			winners <- inserted
		}()
	}
	wg.Wait()
	close(winners)

	wins := 0
	for w := range winners {
		if w {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning insert, got %d", wins)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected 1 record, got %d", repo.Count())
	}
}

func TestInMemorySubLists(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Insert(ctx, &Record{CallID: "C1"}); err != nil {
		t.Fatal(err)
	}

	if err := repo.ReplaceMissedAgents(ctx, "C1", []MissedAgentEntry{{AgentName: "A", Number: "1"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.ReplaceMissedAgents(ctx, "C1", []MissedAgentEntry{{AgentName: "B", Number: "2"}}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.MissedAgents(ctx, "C1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].AgentName != "B" {
		t.Fatalf("replacement must be wholesale, got %+v", got)
	}

	if err := repo.ReplaceHangupRecords(ctx, "unknown", nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown call, got %v", err)
	}
}
