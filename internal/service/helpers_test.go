package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	cases := []struct {
		name       string
		page, size int
		want       []int
		wantPage   int
		wantSize   int
	}{
		{"first page", 1, 2, []int{1, 2}, 1, 2},
		{"last partial page", 3, 2, []int{5}, 3, 2},
		{"past the end", 4, 2, []int{}, 4, 2},
		{"defaults", 0, 0, items, 1, defaultPageSize},
		{"size capped", 1, 10_000, items, 1, maxPageSize},
		{"huge page", math.MaxInt64, 20, []int{}, math.MaxInt64, 20},
		{"huge page small size", math.MaxInt64 / 2, 3, []int{}, math.MaxInt64 / 2, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, pagination := paginate(items, tc.page, tc.size)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantPage, pagination.Page)
			assert.Equal(t, tc.wantSize, pagination.PageSize)
			assert.Equal(t, len(items), pagination.TotalCount)
		})
	}
}
