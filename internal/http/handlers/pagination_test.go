package handlers

import "testing"

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                 string
		total, page, perPage int
		wantPage, wantPages  int
		wantFrom, wantTo     int
	}{
		{name: "first page", total: 10, page: 1, perPage: 4, wantPage: 1, wantPages: 3, wantFrom: 1, wantTo: 4},
		{name: "last partial page", total: 10, page: 3, perPage: 4, wantPage: 3, wantPages: 3, wantFrom: 9, wantTo: 10},
		{name: "page past the end clamps", total: 10, page: 9, perPage: 4, wantPage: 3, wantPages: 3, wantFrom: 9, wantTo: 10},
		{name: "empty list", total: 0, page: 2, perPage: 20, wantPage: 1, wantPages: 1},
		{name: "zero per page", total: 2, page: 1, perPage: 0, wantPage: 1, wantPages: 2, wantFrom: 1, wantTo: 1},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := paginate(tc.total, tc.page, tc.perPage)
			if got.Page != tc.wantPage || got.TotalPages != tc.wantPages {
				t.Fatalf("page = %d/%d, want %d/%d", got.Page, got.TotalPages, tc.wantPage, tc.wantPages)
			}
			if got.From != tc.wantFrom || got.To != tc.wantTo {
				t.Fatalf("range = %d-%d, want %d-%d", got.From, got.To, tc.wantFrom, tc.wantTo)
			}
		})
	}
}
