package dto

import (
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// courseCodePattern 课程代码：字母数字开头，允许空格 . _ -，总长 2-20
// 例：TMA4130、MATH 301、252-0027-00L
var courseCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._\-]{1,19}$`)

// ValidCourseCode 校验课程代码（忽略首尾空白）
func ValidCourseCode(code string) bool {
	return courseCodePattern.MatchString(strings.TrimSpace(code))
}

func validateCourseCode(fl validator.FieldLevel) bool {
	return ValidCourseCode(fl.Field().String())
}

// ValidECTS 学分最多一位小数，与 NUMERIC(4,1) 列一致
func ValidECTS(v float64) bool {
	scaled := v * 10
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

func validateECTS(fl validator.FieldLevel) bool {
	return ValidECTS(fl.Field().Float())
}

// RegisterValidators 注册 DTO 使用的自定义校验标签
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("course_code", validateCourseCode); err != nil {
		return err
	}
	return v.RegisterValidation("ects", validateECTS)
}
