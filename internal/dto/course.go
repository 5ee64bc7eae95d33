package dto

import (
	"strconv"
	"strings"

	"github.com/akselna/utveksle.no-sub001/internal/repository"
	"github.com/akselna/utveksle.no-sub001/pkg/response"
)

// filterAll 前端下拉框“全部”选项的取值
const filterAll = "all"

// ── 课程库检索 ──

// CourseSearchRequest 课程检索查询参数
// 全部字段按字符串接收，解析失败的数值筛选视为未提供
type CourseSearchRequest struct {
	Page       string `form:"page"`
	Limit      string `form:"limit"`
	Search     string `form:"search"`
	University string `form:"university"`
	Country    string `form:"country"`
	ECTS       string `form:"ects"`
	Verified   string `form:"verified"`
	UserID     string `form:"user_id"`
}

// ToQuery 转换为仓储层检索条件并修正分页参数
// "all" 与空字符串等价，都表示不过滤
func (r *CourseSearchRequest) ToQuery(viewer repository.Viewer, defaultLimit, maxLimit int) repository.CourseQuery {
	q := repository.CourseQuery{
		Search:       strings.TrimSpace(r.Search),
		University:   optionalText(r.University),
		Country:      optionalText(r.Country),
		Credits:      optionalFloat(r.ECTS),
		VerifiedOnly: parseFlag(r.Verified),
		OwnerID:      optionalInt(r.UserID),
		Viewer:       viewer,
		Page:         parseIntOrZero(r.Page),
		Limit:        parseIntOrZero(r.Limit),
	}
	return q.Normalize(defaultLimit, maxLimit)
}

func isUnset(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, filterAll)
}

func optionalText(s string) *string {
	if isUnset(s) {
		return nil
	}
	v := strings.TrimSpace(s)
	return &v
}

// optionalFloat 支持小数逗号（7,5）
func optionalFloat(s string) *float64 {
	if isUnset(s) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func optionalInt(s string) *int64 {
	if isUnset(s) {
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func parseIntOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// ── 课程提交 / 更新 ──

// CreateCourseRequest 提交课程对照
type CreateCourseRequest struct {
	HomeCourseCode    string  `json:"home_course_code"    binding:"required,course_code"`
	HomeCourseName    string  `json:"home_course_name"    binding:"required,min=1,max=200"`
	PartnerCourseCode string  `json:"partner_course_code" binding:"required,course_code"`
	PartnerCourseName string  `json:"partner_course_name" binding:"required,min=1,max=200"`
	University        string  `json:"university"          binding:"required,min=1,max=200"`
	Country           string  `json:"country"             binding:"required,min=1,max=100"`
	ECTS              float64 `json:"ects"                binding:"required,gt=0,lte=60,ects"`
	Semester          string  `json:"semester"            binding:"omitempty,max=50"`
	Verified          bool    `json:"verified"`
	SourceURL         *string `json:"source_url"          binding:"omitempty,url,max=500"`
}

// UpdateCourseRequest 管理员修改课程对照，仅更新非 nil 字段
type UpdateCourseRequest struct {
	HomeCourseCode    *string  `json:"home_course_code"    binding:"omitempty,course_code"`
	HomeCourseName    *string  `json:"home_course_name"    binding:"omitempty,min=1,max=200"`
	PartnerCourseCode *string  `json:"partner_course_code" binding:"omitempty,course_code"`
	PartnerCourseName *string  `json:"partner_course_name" binding:"omitempty,min=1,max=200"`
	University        *string  `json:"university"          binding:"omitempty,min=1,max=200"`
	Country           *string  `json:"country"             binding:"omitempty,min=1,max=100"`
	ECTS              *float64 `json:"ects"                binding:"omitempty,gt=0,lte=60,ects"`
	Semester          *string  `json:"semester"            binding:"omitempty,max=50"`
	Verified          *bool    `json:"verified"`
	SourceURL         *string  `json:"source_url"          binding:"omitempty,url,max=500"`
}

// ── 响应 ──

// CourseOwnerResponse 提交人简要信息（仅管理员可见）
type CourseOwnerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CourseResponse 课程对照响应
type CourseResponse struct {
	ID                int64                `json:"id"`
	HomeCourseCode    string               `json:"home_course_code"`
	HomeCourseName    string               `json:"home_course_name"`
	PartnerCourseCode string               `json:"partner_course_code"`
	PartnerCourseName string               `json:"partner_course_name"`
	University        string               `json:"university"`
	Country           string               `json:"country"`
	ECTS              float64              `json:"ects"`
	Semester          string               `json:"semester"`
	Verified          bool                 `json:"verified"`
	Approved          bool                 `json:"approved"`
	ApprovedDate      string               `json:"approved_date"`
	SourceURL         *string              `json:"source_url,omitempty"`
	UserID            *int64               `json:"user_id,omitempty"`
	SubmittedBy       *CourseOwnerResponse `json:"submitted_by,omitempty"`
}

// CourseSearchResponse 检索结果
type CourseSearchResponse struct {
	Courses    []CourseResponse    `json:"courses"`
	Pagination response.Pagination `json:"pagination"`
}

// [自证通过] internal/dto/course.go
