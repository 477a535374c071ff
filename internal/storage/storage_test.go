package storage

import "testing"

func TestNormalizeListRange(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "zero limit applies default", limit: 0, offset: 0, wantLimit: DefaultListLimit, wantOffset: 0},
		{name: "negative values clamp", limit: -1, offset: -5, wantLimit: DefaultListLimit, wantOffset: 0},
		{name: "oversized limit clamps to max", limit: 1000, offset: 10, wantLimit: MaxListLimit, wantOffset: 10},
		{name: "in-range values pass through", limit: 25, offset: 50, wantLimit: 25, wantOffset: 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			limit, offset := NormalizeListRange(tc.limit, tc.offset)
			if limit != tc.wantLimit {
				t.Fatalf("limit = %d, want %d", limit, tc.wantLimit)
			}
			if offset != tc.wantOffset {
				t.Fatalf("offset = %d, want %d", offset, tc.wantOffset)
			}
		})
	}
}
