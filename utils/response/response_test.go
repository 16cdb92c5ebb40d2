package response

import "testing"

func TestCalculatePagination(t *testing.T) {
	cases := []struct {
		name      string
		page      int
		limit     int
		total     int64
		wantPage  int
		wantLimit int
		wantPages int
	}{
		{"exact division", 1, 10, 100, 1, 10, 10},
		{"remainder adds a page", 2, 10, 101, 2, 10, 11},
		{"empty result", 1, 20, 0, 1, 20, 0},
		{"page floor", 0, 10, 5, 1, 10, 1},
		{"limit floor", 1, 0, 5, 1, 10, 1},
		{"limit ceiling", 1, 500, 300, 1, 100, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := CalculatePagination(tc.page, tc.limit, tc.total)
			if meta.CurrentPage != tc.wantPage {
				t.Errorf("CurrentPage = %d, want %d", meta.CurrentPage, tc.wantPage)
			}
			if meta.PerPage != tc.wantLimit {
				t.Errorf("PerPage = %d, want %d", meta.PerPage, tc.wantLimit)
			}
			if meta.Total != tc.total {
				t.Errorf("Total = %d, want %d", meta.Total, tc.total)
			}
			if meta.TotalPages != tc.wantPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tc.wantPages)
			}
		})
	}
}
