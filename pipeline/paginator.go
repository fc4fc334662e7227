package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"coverfetch/model"
)

// DefaultPageSize is the page limit used against the Web API.
const DefaultPageSize = 50

// ErrPaginatorConsumed is yielded when a Paginator is iterated twice.
var ErrPaginatorConsumed = errors.New("paginator already consumed")

// FetchFunc fetches one page of a remote collection.
type FetchFunc[T any] func(ctx context.Context, limit, offset int) (model.Page[T], error)

// Paginator turns a FetchFunc into a lazy, single-use sequence. Pages are
// requested strictly in order; iteration ends only when a page reports
// HasNext == false, because sources may keep returning empty pages past
// the end.
type Paginator[T any] struct {
	fetch    FetchFunc[T]
	limit    int
	offset   int
	consumed bool
}

// NewPaginator creates a Paginator. A non-positive limit uses DefaultPageSize.
func NewPaginator[T any](fetch FetchFunc[T], limit int) *Paginator[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Paginator[T]{fetch: fetch, limit: limit}
}

// Offset returns the offset of the next page to fetch.
func (p *Paginator[T]) Offset() int {
	return p.offset
}

// Pages yields whole pages. A fetch error is yielded once and ends iteration.
func (p *Paginator[T]) Pages(ctx context.Context) iter.Seq2[model.Page[T], error] {
	return func(yield func(model.Page[T], error) bool) {
		var zero model.Page[T]
		if p.consumed {
			yield(zero, ErrPaginatorConsumed)
			return
		}
		p.consumed = true

		for {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			page, err := p.fetch(ctx, p.limit, p.offset)
			if err != nil {
				yield(zero, fmt.Errorf("failed to fetch page at offset %d: %w", p.offset, err))
				return
			}
			if !yield(page, nil) {
				return
			}
			if !page.HasNext {
				return
			}
			p.offset += p.limit
		}
	}
}

// Items flattens Pages into individual items.
func (p *Paginator[T]) Items(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for page, err := range p.Pages(ctx) {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
