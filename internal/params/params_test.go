package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination_Defaults(t *testing.T) {
	p := ParsePagination(url.Values{})

	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Offset)
}

func TestParsePagination_CapsLimit(t *testing.T) {
	q := url.Values{"limit": {"500"}}
	p := ParsePagination(q)

	assert.Equal(t, 50, p.Limit)
}

func TestParsePagination_IgnoresGarbage(t *testing.T) {
	q := url.Values{"limit": {"-3"}, "page": {"abc"}}
	p := ParsePagination(q)

	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 1, p.Page)
}

func TestParsePagination_Offset(t *testing.T) {
	q := url.Values{"limit": {"10"}, "page": {"3"}}
	p := ParsePagination(q)

	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Offset)
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2}
	p.ComputeMeta(35)

	assert.Equal(t, 35, p.Total)
	assert.Equal(t, 4, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)

	p = Pagination{Limit: 10, Page: 4}
	p.ComputeMeta(35)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}
