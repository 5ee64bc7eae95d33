package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akselna/utveksle.no-sub001/internal/repository"
)

func TestToQuery_AllSentinelEqualsAbsent(t *testing.T) {
	viewer := repository.Anonymous()

	withAll := (&CourseSearchRequest{University: "all", Country: "ALL", ECTS: "all", UserID: "all"}).ToQuery(viewer, 20, 100)
	empty := (&CourseSearchRequest{}).ToQuery(viewer, 20, 100)

	assert.Equal(t, empty, withAll)
	assert.Equal(t, empty.Conditions(), withAll.Conditions())
	assert.Nil(t, withAll.University)
	assert.Nil(t, withAll.Country)
	assert.Nil(t, withAll.Credits)
	assert.Nil(t, withAll.OwnerID)
}

func TestToQuery_ParsesFilters(t *testing.T) {
	uid := int64(4)
	viewer := repository.Viewer{UserID: &uid}
	req := &CourseSearchRequest{
		Page:       "2",
		Limit:      "10",
		Search:     "  TMA4130 ",
		University: "ETH Zürich",
		Country:    "Switzerland",
		ECTS:       "7,5",
		Verified:   "true",
		UserID:     "4",
	}

	q := req.ToQuery(viewer, 20, 100)

	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, "TMA4130", q.Search)
	require.NotNil(t, q.University)
	assert.Equal(t, "ETH Zürich", *q.University)
	require.NotNil(t, q.Country)
	assert.Equal(t, "Switzerland", *q.Country)
	require.NotNil(t, q.Credits)
	assert.Equal(t, 7.5, *q.Credits)
	assert.True(t, q.VerifiedOnly)
	require.NotNil(t, q.OwnerID)
	assert.Equal(t, int64(4), *q.OwnerID)
	assert.Equal(t, viewer, q.Viewer)
}

func TestToQuery_UnparseableNumbersAreIgnored(t *testing.T) {
	req := &CourseSearchRequest{Page: "abc", Limit: "-4", ECTS: "mange", UserID: "x1"}

	q := req.ToQuery(repository.Anonymous(), 20, 100)

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Limit)
	assert.Nil(t, q.Credits)
	assert.Nil(t, q.OwnerID)
}

func TestToQuery_LimitClamped(t *testing.T) {
	q := (&CourseSearchRequest{Limit: "5000"}).ToQuery(repository.Anonymous(), 20, 100)
	assert.Equal(t, 100, q.Limit)
}

func TestToQuery_HugePageKeepsOffsetNonNegative(t *testing.T) {
	q := (&CourseSearchRequest{Page: "922337203685477580", Limit: "20"}).ToQuery(repository.Anonymous(), 20, 100)

	assert.Equal(t, 20, q.Limit)
	assert.Greater(t, q.Offset(), 0)
	assert.Equal(t, (q.Page-1)*q.Limit, q.Offset())
}

func TestToQuery_VerifiedFlag(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"false", false},
		{"all", false},
		{"true", true},
		{"TRUE", true},
		{"1", true},
	}
	for _, tc := range cases {
		q := (&CourseSearchRequest{Verified: tc.in}).ToQuery(repository.Anonymous(), 20, 100)
		assert.Equal(t, tc.want, q.VerifiedOnly, "verified=%q", tc.in)
	}
}

func TestPaginationRequest(t *testing.T) {
	p := PaginationRequest{}
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, 20, p.GetLimit(20, 100))

	p = PaginationRequest{Page: 3, Limit: 500}
	assert.Equal(t, 3, p.GetPage())
	assert.Equal(t, 100, p.GetLimit(20, 100))
}
