package shoe

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Field names a filterable or sortable shoe attribute.
type Field string

const (
	FieldName        Field = "name"
	FieldBrand       Field = "brand"
	FieldCategory    Field = "category"
	FieldPrice       Field = "price"
	FieldStock       Field = "stock"
	FieldDescription Field = "description"
	FieldSizes       Field = "sizes"
	FieldColors      Field = "colors"
	FieldCreatedAt   Field = "createdAt"
)

// control keys never become filters
var controlKeys = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
	"search": true,
}

var filterKeys = map[string]Field{
	"name":        FieldName,
	"brand":       FieldBrand,
	"category":    FieldCategory,
	"price":       FieldPrice,
	"stock":       FieldStock,
	"description": FieldDescription,
	"sizes":       FieldSizes,
	"size":        FieldSizes,
	"colors":      FieldColors,
	"color":       FieldColors,
}

var sortKeys = map[string]Field{
	"name":      FieldName,
	"brand":     FieldBrand,
	"category":  FieldCategory,
	"price":     FieldPrice,
	"stock":     FieldStock,
	"createdAt": FieldCreatedAt,
}

// Filter matches when the field equals any of Values. For sizes and colors it
// matches when the list contains any of Values.
type Filter struct {
	Field  Field
	Values []string
}

type SortField struct {
	Field Field
	Desc  bool
}

type ListQuery struct {
	Filters     []Filter
	SearchTerms []string
	Sort        []SortField
	Page        int
	Limit       int
}

// Offset is the number of rows skipped before the current page. It saturates
// at math.MaxInt instead of wrapping, so a page far past the end stays empty.
func (q ListQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// ParseListQuery turns URL query values into a ListQuery. Control keys are
// stripped, the remaining known keys become filters, unknown keys are ignored.
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{
		Page:  positiveOr(values.Get("page"), DefaultPage),
		Limit: ClampLimit(positiveOr(values.Get("limit"), DefaultLimit)),
		Sort:  ParseSort(values.Get("sort")),
	}
	q.SearchTerms = SearchTerms(values.Get("search"))

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ve := apperror.NewValidationError()
	merged := make(map[Field]int)
	for _, key := range keys {
		if controlKeys[key] {
			continue
		}
		field, ok := filterKeys[key]
		if !ok {
			continue
		}
		vals := make([]string, 0, len(values[key]))
		for _, v := range values[key] {
			v = strings.TrimSpace(v)
			if field == FieldPrice || field == FieldStock {
				if !isNumeric(field, v) {
					ve.Add(key, "must be a number")
					continue
				}
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			continue
		}
		if i, ok := merged[field]; ok {
			q.Filters[i].Values = append(q.Filters[i].Values, vals...)
			continue
		}
		merged[field] = len(q.Filters)
		q.Filters = append(q.Filters, Filter{Field: field, Values: vals})
	}

	if err := ve.OrNil(); err != nil {
		return ListQuery{}, err
	}
	return q, nil
}

// ParseSort reads "price,-createdAt" style values. Unknown fields are dropped;
// an empty result means newest first.
func ParseSort(raw string) []SortField {
	var out []SortField
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimPrefix(strings.TrimPrefix(part, "-"), "+")
		if f, ok := sortKeys[part]; ok {
			out = append(out, SortField{Field: f, Desc: desc})
		}
	}
	if len(out) == 0 {
		out = []SortField{{Field: FieldCreatedAt, Desc: true}}
	}
	return out
}

// SearchTerms splits free text into lower-case word tokens. A shoe matches a
// search when any token appears in its name, brand or description.
func SearchTerms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ClampLimit bounds a page size to [1, MaxLimit], using DefaultLimit for
// non-positive values.
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// PageCount is ceil(total/limit).
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return total/limit + min(total%limit, 1)
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func isNumeric(field Field, v string) bool {
	if field == FieldStock {
		_, err := strconv.Atoi(v)
		return err == nil
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}
