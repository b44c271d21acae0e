package response

import "testing"

func TestNewPageRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", page: 0, limit: 0, wantPage: 1, wantLimit: DefaultPageSize, wantOffset: 0},
		{name: "negative", page: -3, limit: -1, wantPage: 1, wantLimit: DefaultPageSize, wantOffset: 0},
		{name: "capped", page: 2, limit: 1000, wantPage: 2, wantLimit: MaxPageSize, wantOffset: MaxPageSize},
		{name: "regular", page: 3, limit: 10, wantPage: 3, wantLimit: 10, wantOffset: 20},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := NewPageRequest(tt.page, tt.limit)
			if req.Page != tt.wantPage || req.Limit != tt.wantLimit || req.Offset() != tt.wantOffset {
				t.Fatalf("got page=%d limit=%d offset=%d", req.Page, req.Limit, req.Offset())
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	t.Parallel()

	p := NewPagination(NewPageRequest(2, 10), 25, 10)
	if p.TotalPages != 3 || !p.HasMore || p.From != 11 || p.To != 20 {
		t.Fatalf("unexpected pagination: %+v", p)
	}

	last := NewPagination(NewPageRequest(3, 10), 25, 5)
	if last.HasMore || last.From != 21 || last.To != 25 {
		t.Fatalf("unexpected last page: %+v", last)
	}

	empty := NewPagination(NewPageRequest(1, 10), 0, 0)
	if empty.TotalPages != 0 || empty.HasMore || empty.From != 0 || empty.To != 0 {
		t.Fatalf("unexpected empty page: %+v", empty)
	}
}
