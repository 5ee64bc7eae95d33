package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCourseCode(t *testing.T) {
	for _, code := range []string{"TMA4130", "MATH301", "MATH 301", "252-0027-00L", " TDT4100 ", "CS.101"} {
		assert.True(t, ValidCourseCode(code), code)
	}
	for _, code := range []string{"", "A", "-ABC", "TMA4130; DROP", "ABCDEFGHIJKLMNOPQRSTU", "ÆØÅ123"} {
		assert.False(t, ValidCourseCode(code), code)
	}
}

func TestValidECTS(t *testing.T) {
	for _, v := range []float64{7.5, 10, 2.5, 0.1, 60} {
		assert.True(t, ValidECTS(v), v)
	}
	for _, v := range []float64{7.25, 0.05, 3.333} {
		assert.False(t, ValidECTS(v), v)
	}
}

func TestRegisterValidators_ECTSPrecision(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidators(v))

	req := CreateCourseRequest{
		HomeCourseCode:    "TMA4130",
		HomeCourseName:    "Matematikk 4N",
		PartnerCourseCode: "MATH301",
		PartnerCourseName: "Analysis III",
		University:        "ETH Zürich",
		Country:           "Switzerland",
		ECTS:              7.25,
	}
	assert.Error(t, v.Struct(req))

	precise := 7.25
	assert.Error(t, v.Struct(UpdateCourseRequest{ECTS: &precise}))
	ok := 7.5
	assert.NoError(t, v.Struct(UpdateCourseRequest{ECTS: &ok}))
}

func TestRegisterValidators_CreateCourseRequest(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, RegisterValidators(v))

	req := CreateCourseRequest{
		HomeCourseCode:    "TMA4130",
		HomeCourseName:    "Matematikk 4N",
		PartnerCourseCode: "MATH301",
		PartnerCourseName: "Analysis III",
		University:        "ETH Zürich",
		Country:           "Switzerland",
		ECTS:              7.5,
	}
	assert.NoError(t, v.Struct(req))

	bad := req
	bad.PartnerCourseCode = "?"
	assert.Error(t, v.Struct(bad))

	bad = req
	bad.ECTS = 75
	assert.Error(t, v.Struct(bad))

	url := "ikke en url"
	bad = req
	bad.SourceURL = &url
	assert.Error(t, v.Struct(bad))
}
