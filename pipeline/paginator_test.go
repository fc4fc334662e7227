package pipeline

import (
	"context"
	"errors"
	"testing"

	"coverfetch/model"
)

// scriptedSource answers fetches from a fixed list of pages and records the
// offsets it was asked for.
type scriptedSource struct {
	pages   []model.Page[int]
	offsets []int
	limits  []int
	errAt   int // page index that fails; -1 for none
}

func (s *scriptedSource) fetch(ctx context.Context, limit, offset int) (model.Page[int], error) {
	n := len(s.offsets)
	s.offsets = append(s.offsets, offset)
	s.limits = append(s.limits, limit)
	if n == s.errAt {
		return model.Page[int]{}, errors.New("boom")
	}
	if n >= len(s.pages) {
		// past the end: empty pages forever, still claiming more
		return model.Page[int]{HasNext: true}, nil
	}
	return s.pages[n], nil
}

func seq(from, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from + i
	}
	return out
}

func TestPaginator_OffsetsAdvanceByLimit(t *testing.T) {
	src := &scriptedSource{
		pages: []model.Page[int]{
			{Items: seq(0, 50), Total: 120, HasNext: true},
			{Items: seq(50, 50), Total: 120, HasNext: true},
			{Items: seq(100, 20), Total: 120, HasNext: false},
		},
		errAt: -1,
	}

	var items []int
	for item, err := range NewPaginator(src.fetch, 50).Items(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items = append(items, item)
	}

	if len(items) != 120 {
		t.Fatalf("got %d items, want 120", len(items))
	}
	for i, v := range items {
		if v != i {
			t.Fatalf("item %d = %d; items out of order", i, v)
		}
	}
	for n, off := range src.offsets {
		if off != n*50 {
			t.Errorf("fetch %d used offset %d, want %d", n+1, off, n*50)
		}
		if src.limits[n] != 50 {
			t.Errorf("fetch %d used limit %d, want 50", n+1, src.limits[n])
		}
	}
}

func TestPaginator_EmptyPagesWithNextDoNotTerminate(t *testing.T) {
	src := &scriptedSource{
		pages: []model.Page[int]{
			{Items: nil, Total: 3, HasNext: true},
			{Items: []int{}, Total: 3, HasNext: true},
			{Items: []int{1, 2, 3}, Total: 3, HasNext: true},
			{Items: nil, Total: 3, HasNext: false},
		},
		errAt: -1,
	}

	count := 0
	for _, err := range NewPaginator(src.fetch, 10).Items(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		count++
	}

	if len(src.offsets) != 4 {
		t.Errorf("expected 4 fetches, got %d", len(src.offsets))
	}
	if count != 3 {
		t.Errorf("expected 3 items, got %d", count)
	}
}

func TestPaginator_ShortPageWithNextContinues(t *testing.T) {
	src := &scriptedSource{
		pages: []model.Page[int]{
			{Items: []int{1}, Total: 2, HasNext: true},
			{Items: []int{2}, Total: 2, HasNext: false},
		},
		errAt: -1,
	}

	pages := 0
	for _, err := range NewPaginator(src.fetch, 50).Pages(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pages++
	}
	if pages != 2 {
		t.Errorf("expected 2 pages, got %d", pages)
	}
}

func TestPaginator_StopsOnlyWhenHasNextFalse(t *testing.T) {
	// The source never says "no more"; the consumer has to stop on its own.
	src := &scriptedSource{errAt: -1}

	fetched := 0
	for _, err := range NewPaginator(src.fetch, 50).Pages(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fetched++
		if fetched == 25 {
			break
		}
	}
	if len(src.offsets) != 25 {
		t.Errorf("expected pagination to keep going past empty pages, got %d fetches", len(src.offsets))
	}
}

func TestPaginator_FetchErrorAborts(t *testing.T) {
	src := &scriptedSource{
		pages: []model.Page[int]{
			{Items: seq(0, 2), Total: 6, HasNext: true},
			{Items: seq(2, 2), Total: 6, HasNext: true},
			{Items: seq(4, 2), Total: 6, HasNext: false},
		},
		errAt: 1,
	}

	var got []int
	var gotErr error
	for item, err := range NewPaginator(src.fetch, 2).Items(context.Background()) {
		if err != nil {
			gotErr = err
			continue
		}
		got = append(got, item)
	}

	if gotErr == nil {
		t.Fatal("expected fetch error")
	}
	if len(got) != 2 {
		t.Errorf("expected items of the first page only, got %v", got)
	}
	if len(src.offsets) != 2 {
		t.Errorf("expected no fetch after the error, got %d fetches", len(src.offsets))
	}
}

func TestPaginator_SingleUse(t *testing.T) {
	src := &scriptedSource{pages: []model.Page[int]{{Items: []int{1}, HasNext: false}}, errAt: -1}
	p := NewPaginator(src.fetch, 1)

	for range p.Items(context.Background()) {
	}

	var gotErr error
	for _, err := range p.Items(context.Background()) {
		gotErr = err
	}
	if !errors.Is(gotErr, ErrPaginatorConsumed) {
		t.Errorf("expected ErrPaginatorConsumed, got %v", gotErr)
	}
}

func TestPaginator_CancelledContext(t *testing.T) {
	src := &scriptedSource{errAt: -1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	for _, err := range NewPaginator(src.fetch, 1).Pages(ctx) {
		gotErr = err
	}
	if !errors.Is(gotErr, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", gotErr)
	}
	if len(src.offsets) != 0 {
		t.Errorf("expected no fetch on a cancelled context")
	}
}
