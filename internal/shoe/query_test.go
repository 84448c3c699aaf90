package shoe_test

import (
	"math"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
)

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want shoe.ListQuery
	}{
		{
			name: "defaults",
			raw:  "",
			want: shoe.ListQuery{
				Page:  1,
				Limit: 10,
				Sort:  []shoe.SortField{{Field: shoe.FieldCreatedAt, Desc: true}},
			},
		},
		{
			name: "control_keys_stripped_and_unknown_ignored",
			raw:  "page=2&limit=5&fields=name&sort=price,-name&foo=bar&category=men",
			want: shoe.ListQuery{
				Page:    2,
				Limit:   5,
				Sort:    []shoe.SortField{{Field: shoe.FieldPrice}, {Field: shoe.FieldName, Desc: true}},
				Filters: []shoe.Filter{{Field: shoe.FieldCategory, Values: []string{"men"}}},
			},
		},
		{
			name: "legacy_and_plural_keys_merge",
			raw:  "size=9&sizes=10&color=red",
			want: shoe.ListQuery{
				Page:  1,
				Limit: 10,
				Sort:  []shoe.SortField{{Field: shoe.FieldCreatedAt, Desc: true}},
				Filters: []shoe.Filter{
					{Field: shoe.FieldColors, Values: []string{"red"}},
					{Field: shoe.FieldSizes, Values: []string{"9", "10"}},
				},
			},
		},
		{
			name: "huge_limit_clamped",
			raw:  "page=9223372036854775807&limit=9223372036854775807",
			want: shoe.ListQuery{
				Page:  math.MaxInt,
				Limit: shoe.MaxLimit,
				Sort:  []shoe.SortField{{Field: shoe.FieldCreatedAt, Desc: true}},
			},
		},
		{
			name: "bad_paging_falls_back",
			raw:  "page=-3&limit=abc&search=Running+SHOES+running",
			want: shoe.ListQuery{
				Page:        1,
				Limit:       10,
				Sort:        []shoe.SortField{{Field: shoe.FieldCreatedAt, Desc: true}},
				SearchTerms: []string{"running", "shoes"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)

			got, err := shoe.ParseListQuery(values)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseListQuery mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseListQuery_NonNumericPrice(t *testing.T) {
	values := url.Values{"price": {"cheap"}, "stock": {"1.5"}}

	_, err := shoe.ParseListQuery(values)
	require.ErrorIs(t, err, apperror.ErrValidation)

	fields := apperror.Fields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "price", fields[0].Field)
	assert.Equal(t, "stock", fields[1].Field)
}

func TestParseSort_UnknownFieldsFallBackToNewest(t *testing.T) {
	got := shoe.ParseSort("image,-password")
	assert.Equal(t, []shoe.SortField{{Field: shoe.FieldCreatedAt, Desc: true}}, got)
}

func TestSearchTerms(t *testing.T) {
	assert.Nil(t, shoe.SearchTerms("  ,, "))
	assert.Equal(t, []string{"air", "max", "90"}, shoe.SearchTerms("Air-Max 90"))
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 3, shoe.PageCount(25, 10))
	assert.Equal(t, 2, shoe.PageCount(20, 10))
	assert.Equal(t, 0, shoe.PageCount(0, 10))
	assert.Equal(t, 0, shoe.PageCount(5, 0))
	assert.Equal(t, 1, shoe.PageCount(1, math.MaxInt))
	assert.Equal(t, math.MaxInt, shoe.PageCount(math.MaxInt, 1))
	assert.Equal(t, math.MaxInt/10+1, shoe.PageCount(math.MaxInt, 10))
}

func TestListQuery_Offset(t *testing.T) {
	tests := []struct {
		name string
		q    shoe.ListQuery
		want int
	}{
		{name: "third_page", q: shoe.ListQuery{Page: 3, Limit: 10}, want: 20},
		{name: "first_page", q: shoe.ListQuery{Page: 1, Limit: 10}, want: 0},
		{name: "zero_values", q: shoe.ListQuery{}, want: 0},
		{name: "huge_page_saturates", q: shoe.ListQuery{Page: math.MaxInt, Limit: 10}, want: math.MaxInt},
		{name: "huge_limit_saturates", q: shoe.ListQuery{Page: 2, Limit: math.MaxInt}, want: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Offset())
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, shoe.DefaultLimit, shoe.ClampLimit(0))
	assert.Equal(t, shoe.DefaultLimit, shoe.ClampLimit(-5))
	assert.Equal(t, 25, shoe.ClampLimit(25))
	assert.Equal(t, shoe.MaxLimit, shoe.ClampLimit(math.MaxInt))
}
