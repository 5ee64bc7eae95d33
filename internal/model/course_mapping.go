package model

import "time"

// CourseMapping 课程对照表 — 对应 course_mappings
// 记录本校课程与交换院校课程之间的学分互认关系
type CourseMapping struct {
	ID                int64      `gorm:"primaryKey;autoIncrement"               json:"id"`
	HomeCourseCode    string     `gorm:"type:varchar(20);not null"              json:"home_course_code"`
	HomeCourseName    string     `gorm:"type:varchar(200);not null"             json:"home_course_name"`
	PartnerCourseCode string     `gorm:"type:varchar(20);not null"              json:"partner_course_code"`
	PartnerCourseName string     `gorm:"type:varchar(200);not null"             json:"partner_course_name"`
	University        string     `gorm:"type:varchar(200);not null;index"       json:"university"`
	Country           string     `gorm:"type:varchar(100);not null;index"       json:"country"`
	ECTS              float64    `gorm:"column:ects;type:numeric(4,1);not null" json:"ects"`
	Semester          string     `gorm:"type:varchar(50);not null;default:''"   json:"semester"`
	Verified          bool       `gorm:"not null;default:false"                 json:"verified"`
	Approved          bool       `gorm:"not null;default:false;index"           json:"approved"`
	ApprovedAt        *time.Time `gorm:"type:timestamptz"                       json:"approved_at,omitempty"`
	SourceURL         *string    `gorm:"type:text"                              json:"source_url,omitempty"`
	UserID            *int64     `gorm:"index"                                  json:"user_id,omitempty"`
	BaseModel

	// 关联
	Owner *User `gorm:"foreignKey:UserID;references:ID" json:"owner,omitempty"`
}

// TableName 指定表名
func (CourseMapping) TableName() string { return "course_mappings" }

// OwnedBy 判断记录是否属于指定用户
func (m *CourseMapping) OwnedBy(userID int64) bool {
	return m.UserID != nil && *m.UserID == userID
}

// DisplayDate 前端展示日期：已审核取审核日期，否则取提交日期
func (m *CourseMapping) DisplayDate() time.Time {
	if m.ApprovedAt != nil {
		return *m.ApprovedAt
	}
	return m.CreatedAt
}
