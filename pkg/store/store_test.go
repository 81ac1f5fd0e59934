package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bbs/pkg/models"
	"bbs/pkg/state"
)

func newTestStore(t *testing.T, shardSize int) (*Store, state.Paths) {
	t.Helper()
	paths, err := state.EnsureStateDirs(t.TempDir())
	if err != nil {
		t.Fatalf("EnsureStateDirs: %v", err)
	}
	s, err := Open(paths, shardSize)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, paths
}

func matchAll(author, subject string) bool { return true }

func TestWriteReadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t, 10)
	in := models.Message{ID: 7, Author: "kathi", Subject: "post homework?", Body: "is the handout ready?"}
	if err := s.WriteRecord(in); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	got, err := s.ReadRecord(7)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if got != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, in)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	s, _ := newTestStore(t, 10)
	if _, err := s.ReadRecord(3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound; got %v", err)
	}
	// a present shard without the id behaves the same
	if err := s.WriteRecord(models.Message{ID: 1, Author: "a", Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if _, err := s.ReadRecord(3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound; got %v", err)
	}
}

func TestShardFileMapping(t *testing.T) {
	s, paths := newTestStore(t, 10)
	// ids 1..10 share shard 0, id 11 starts shard 1
	for _, id := range []int{1, 10, 11} {
		if err := s.WriteRecord(models.Message{ID: id, Author: "a", Subject: "s", Body: "b"}); err != nil {
			t.Fatalf("WriteRecord(%d): %v", id, err)
		}
	}
	if _, err := os.Stat(filepath.Join(paths.Records, "shard-0.txt")); err != nil {
		t.Fatalf("expected shard-0.txt: %v", err)
	}
	if _, err := os.Stat(filepath.Join(paths.Records, "shard-1.txt")); err != nil {
		t.Fatalf("expected shard-1.txt: %v", err)
	}
	if _, err := os.Stat(filepath.Join(paths.Records, "shard-2.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected no shard-2.txt; got %v", err)
	}
}

func TestDeleteRemovesFromBothViews(t *testing.T) {
	s, _ := newTestStore(t, 10)
	for id := 1; id <= 3; id++ {
		if err := s.WriteRecord(models.Message{ID: id, Author: "a", Subject: "s", Body: "b"}); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	removed, err := s.DeleteRecord(2)
	if err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if !removed {
		t.Fatal("expected DeleteRecord to report removal")
	}
	if _, err := s.ReadRecord(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete; got %v", err)
	}
	entries, err := s.ScanSummaries(matchAll)
	if err != nil {
		t.Fatalf("ScanSummaries: %v", err)
	}
	for _, e := range entries {
		if e.ID == 2 {
			t.Fatal("deleted id still present in summary partition")
		}
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 surviving summaries; got %d", len(entries))
	}
	// surviving records still readable
	if _, err := s.ReadRecord(1); err != nil {
		t.Fatalf("ReadRecord(1): %v", err)
	}
	if _, err := s.ReadRecord(3); err != nil {
		t.Fatalf("ReadRecord(3): %v", err)
	}
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	s, _ := newTestStore(t, 10)
	removed, err := s.DeleteRecord(5)
	if err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if removed {
		t.Fatal("expected no-op delete for absent id")
	}
	if err := s.WriteRecord(models.Message{ID: 1, Author: "a", Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	removed, err = s.DeleteRecord(5)
	if err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if removed {
		t.Fatal("expected no-op delete for absent id in existing shard")
	}
	if _, err := s.ReadRecord(1); err != nil {
		t.Fatalf("existing record disturbed by no-op delete: %v", err)
	}
}

func TestScanSummariesFilter(t *testing.T) {
	s, _ := newTestStore(t, 10)
	msgs := []models.Message{
		{ID: 1, Author: "kathi", Subject: "post homework?", Body: "x"},
		{ID: 2, Author: "nick", Subject: "vscode headache", Body: "y"},
		{ID: 3, Author: "kathi", Subject: "office hours", Body: "z"},
	}
	for _, m := range msgs {
		if err := s.WriteRecord(m); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}

	term := "homework"
	got, err := s.ScanSummaries(func(author, subject string) bool {
		return strings.Contains(author, term) || strings.Contains(subject, term)
	})
	if err != nil {
		t.Fatalf("ScanSummaries: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only id 1 for %q; got %+v", term, got)
	}

	// author matches count too, and matching is case-sensitive
	term = "kathi"
	got, err = s.ScanSummaries(func(author, subject string) bool {
		return strings.Contains(author, term) || strings.Contains(subject, term)
	})
	if err != nil {
		t.Fatalf("ScanSummaries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for author term; got %d", len(got))
	}
	term = "KATHI"
	got, err = s.ScanSummaries(func(author, subject string) bool {
		return strings.Contains(author, term) || strings.Contains(subject, term)
	})
	if err != nil {
		t.Fatalf("ScanSummaries: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected case-sensitive match to find nothing; got %d", len(got))
	}

	all, err := s.ScanSummaries(matchAll)
	if err != nil {
		t.Fatalf("ScanSummaries: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 summaries; got %d", len(all))
	}
}

func TestScanSummariesStorageOrder(t *testing.T) {
	// summary order is append order of surviving entries, not ID order;
	// this is a documented non-guarantee of the format.
	s, _ := newTestStore(t, 10)
	for _, id := range []int{2, 3, 1} {
		if err := s.WriteRecord(models.Message{ID: id, Author: "a", Subject: "s", Body: "b"}); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	got, err := s.ScanSummaries(matchAll)
	if err != nil {
		t.Fatalf("ScanSummaries: %v", err)
	}
	want := []int{2, 3, 1}
	for i, e := range got {
		if e.ID != want[i] {
			t.Fatalf("expected storage order %v; got position %d = %d", want, i, e.ID)
		}
	}
}

func TestReaderResyncsAfterPartialWrite(t *testing.T) {
	s, paths := newTestStore(t, 10)
	if err := s.WriteRecord(models.Message{ID: 1, Author: "a", Subject: "first", Body: "b"}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	// simulate a truncated block: separator and ID line but no fields
	shard := filepath.Join(paths.Records, "shard-0.txt")
	f, err := os.OpenFile(shard, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString(Separator + "\nID: 2\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()
	if err := s.WriteRecord(models.Message{ID: 3, Author: "a", Subject: "third", Body: "b"}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	// the truncated block is skipped, both complete records survive
	if _, err := s.ReadRecord(1); err != nil {
		t.Fatalf("ReadRecord(1): %v", err)
	}
	if _, err := s.ReadRecord(3); err != nil {
		t.Fatalf("ReadRecord(3): %v", err)
	}
	if _, err := s.ReadRecord(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected truncated block to be invisible; got %v", err)
	}
}

func TestSubjectMayContainSlash(t *testing.T) {
	s, _ := newTestStore(t, 10)
	in := models.Message{ID: 1, Author: "kathi", Subject: "either/or", Body: "b"}
	if err := s.WriteRecord(in); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	got, err := s.ScanSummaries(matchAll)
	if err != nil {
		t.Fatalf("ScanSummaries: %v", err)
	}
	if len(got) != 1 || got[0].Author != "kathi" || got[0].Subject != "either/or" {
		t.Fatalf("summary parse mismatch: %+v", got)
	}
}
