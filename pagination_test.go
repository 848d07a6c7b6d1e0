package xsession

import (
	"context"
	"errors"
	"testing"
)

// scriptPages builds a fetcher serving pages keyed by cursor, recording
// every cursor requested.
func scriptPages(requested *[]string, pages map[string]struct {
	items []int
	next  string
}) fetchPage[int] {
	return func(ctx context.Context, cursor string) ([]int, string, error) {
		*requested = append(*requested, cursor)
		p, ok := pages[cursor]
		if !ok {
			return nil, "", errors.New("unexpected cursor " + cursor)
		}
		return p.items, p.next, nil
	}
}

func TestIteratorWalksPages(t *testing.T) {
	var requested []string
	it := newIterator(0, scriptPages(&requested, map[string]struct {
		items []int
		next  string
	}{
		"":  {items: []int{1, 2}, next: "a"},
		"a": {items: []int{3, 4}, next: "b"},
		"b": {items: []int{5}, next: ""},
	}))

	got, err := it.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []int{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Collect = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Collect = %v, want %v", got, want)
		}
	}
	if len(requested) != 3 || requested[0] != "" || requested[1] != "a" || requested[2] != "b" {
		t.Errorf("requested cursors = %v", requested)
	}
}

func TestIteratorLazy(t *testing.T) {
	var requested []string
	it := newIterator(0, scriptPages(&requested, map[string]struct {
		items []int
		next  string
	}{
		"": {items: []int{1}, next: ""},
	}))

	if len(requested) != 0 {
		t.Fatalf("fetched before first Next: %v", requested)
	}
	if !it.Next(context.Background()) {
		t.Fatalf("Next = false, err %v", it.Err())
	}
	if len(requested) != 1 {
		t.Errorf("fetches after first Next = %d, want 1", len(requested))
	}
	if it.Value() != 1 {
		t.Errorf("Value = %d, want 1", it.Value())
	}
}

func TestIteratorLimit(t *testing.T) {
	var requested []string
	it := newIterator(3, scriptPages(&requested, map[string]struct {
		items []int
		next  string
	}{
		"":  {items: []int{1, 2}, next: "a"},
		"a": {items: []int{3, 4}, next: "b"},
		"b": {items: []int{5}, next: ""},
	}))

	got, err := it.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("Collect = %v, want first 3 elements", got)
	}
	// The third page is never needed.
	if len(requested) != 2 {
		t.Errorf("fetches = %d, want 2", len(requested))
	}
}

func TestIteratorFetchErrorKeepsYielded(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	it := newIterator(0, func(ctx context.Context, cursor string) ([]int, string, error) {
		calls++
		if cursor == "" {
			return []int{1, 2}, "a", nil
		}
		return nil, "", boom
	})

	got, err := it.Collect(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Collect err = %v, want boom", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("yielded before failure = %v, want [1 2]", got)
	}
	if it.Next(context.Background()) {
		t.Error("Next = true after failure")
	}
	if calls != 2 {
		t.Errorf("fetches = %d, want 2", calls)
	}
}

func TestIteratorStopsOnStaleCursor(t *testing.T) {
	var requested []string
	it := newIterator(0, scriptPages(&requested, map[string]struct {
		items []int
		next  string
	}{
		"":  {items: []int{1}, next: "x"},
		"x": {items: []int{2}, next: "x"},
	}))

	got, err := it.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Collect = %v, want [1 2]", got)
	}
	if len(requested) != 2 {
		t.Errorf("fetches = %d, want 2 (repeated cursor must end the walk)", len(requested))
	}
}

func TestIteratorStopsOnEmptyPage(t *testing.T) {
	// Past the end of a timeline Twitter serves empty pages that still
	// carry fresh cursors; the walk must end at the first one.
	var requested []string
	it := newIterator(0, scriptPages(&requested, map[string]struct {
		items []int
		next  string
	}{
		"":  {items: []int{1, 2}, next: "a"},
		"a": {next: "b"},
		"b": {items: []int{99}, next: ""},
	}))

	got, err := it.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Collect = %v, want [1 2]", got)
	}
	if len(requested) != 2 {
		t.Errorf("fetches = %d, want 2 (empty page must end the walk)", len(requested))
	}
}

func TestIteratorEmptyFirstPage(t *testing.T) {
	var requested []string
	it := newIterator(0, scriptPages(&requested, map[string]struct {
		items []int
		next  string
	}{
		"": {next: ""},
	}))

	if it.Next(context.Background()) {
		t.Fatal("Next = true on empty collection")
	}
	if it.Err() != nil {
		t.Fatalf("Err = %v", it.Err())
	}
	if len(requested) != 1 {
		t.Errorf("fetches = %d, want 1", len(requested))
	}
}

func TestFailedIterator(t *testing.T) {
	want := &ValidationError{Field: "query", Reason: "must not be empty"}
	it := failedIterator[int](want)

	if it.Next(context.Background()) {
		t.Fatal("Next = true on failed iterator")
	}
	var vErr *ValidationError
	if !errors.As(it.Err(), &vErr) {
		t.Fatalf("Err = %v, want ValidationError", it.Err())
	}
	if it.Value() != 0 {
		t.Errorf("Value = %d, want zero value", it.Value())
	}
}
