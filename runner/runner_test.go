package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestMapSortsResults(t *testing.T) {
	files := []string{"locus10.nex", "locus2.nex", "locus1.nex"}
	results, err := Map(context.Background(), files, 4, nil, func(file string) (string, error) {
		return strings.ToUpper(file), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, result := range results {
		order = append(order, result.File)
	}
	want := []string{"locus1.nex", "locus2.nex", "locus10.nex"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestMapCollectsErrors(t *testing.T) {
	files := []string{"good1", "bad", "good2"}
	results, err := Map(context.Background(), files, 1, nil, func(file string) (int, error) {
		if file == "bad" {
			return 0, errors.New("parse failure")
		}
		return 1, nil
	})
	if err == nil || !strings.Contains(err.Error(), "parse failure") {
		t.Fatalf("err = %v, want parse failure", err)
	}
	// The failing worker ran first or second with one worker; files
	// dispatched before the failure still succeed.
	for _, result := range results {
		if result.File == "bad" {
			t.Error("failed file should not appear in results")
		}
	}
}

func TestMapDeduplicatesErrors(t *testing.T) {
	files := []string{"a", "b", "c"}
	_, err := Map(context.Background(), files, 3, nil, func(file string) (int, error) {
		return 0, errors.New("same failure")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := strings.Count(err.Error(), "same failure"); got != 1 {
		t.Errorf("error repeated %d times, want deduplicated to 1: %v", got, err)
	}
}

func TestMapContainsPanic(t *testing.T) {
	_, err := Map(context.Background(), []string{"boom"}, 1, nil, func(file string) (int, error) {
		panic("worker exploded")
	})
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Fatalf("err = %v, want contained internal error", err)
	}
}

func TestMapProgressEvents(t *testing.T) {
	var mu sync.Mutex
	counts := make(map[Event]int)
	files := []string{"a", "b", "fail"}
	Map(context.Background(), files, 2, func(event Event, file string) {
		mu.Lock()
		counts[event]++
		mu.Unlock()
	}, func(file string) (int, error) {
		if file == "fail" {
			return 0, errors.New("no")
		}
		return 1, nil
	})
	if counts[FileStarted] == 0 || counts[FileCompleted] == 0 || counts[FileFailed] != 1 {
		t.Errorf("event counts = %v", counts)
	}
}

func TestMapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Map(ctx, []string{"a", "b"}, 1, nil, func(file string) (int, error) {
		return 1, nil
	})
	if err == nil {
		t.Error("cancelled context should surface an error")
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none dispatched", results)
	}
}
