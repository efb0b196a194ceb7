package utils

import "testing"

func TestBuildEventsListCacheKey(t *testing.T) {
	base := BuildEventsListCacheKey("Workshop", "upcoming", "ml", 1, 20)

	tests := []struct {
		name     string
		key      string
		wantSame bool
	}{
		{
			name:     "identical_filters",
			key:      BuildEventsListCacheKey("Workshop", "upcoming", "ml", 1, 20),
			wantSame: true,
		},
		{
			// category filters exact-match, so casing is a distinct query
			name:     "category_casing_differs",
			key:      BuildEventsListCacheKey("workshop", "upcoming", "ml", 1, 20),
			wantSame: false,
		},
		{
			name:     "status_casing_differs",
			key:      BuildEventsListCacheKey("Workshop", "Upcoming", "ml", 1, 20),
			wantSame: false,
		},
		{
			// search is case-insensitive, casing folds to one key
			name:     "search_casing_folds",
			key:      BuildEventsListCacheKey("Workshop", "upcoming", "ML", 1, 20),
			wantSame: true,
		},
		{
			name:     "page_differs",
			key:      BuildEventsListCacheKey("Workshop", "upcoming", "ml", 2, 20),
			wantSame: false,
		},
		{
			name:     "limit_differs",
			key:      BuildEventsListCacheKey("Workshop", "upcoming", "ml", 1, 10),
			wantSame: false,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if same := tt.key == base; same != tt.wantSame {
				t.Fatalf("key %q vs base %q: same=%v, want %v", tt.key, base, same, tt.wantSame)
			}
		})
	}
}
