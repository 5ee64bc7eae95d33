package repository

import (
	"math"
	"strings"

	"gorm.io/gorm/clause"
)

const (
	// DefaultPageLimit 未指定 limit 时的每页条数
	DefaultPageLimit = 20
	// MaxPageLimit limit 上限
	MaxPageLimit = 100
)

// searchColumns 关键词检索覆盖的六个字段
var searchColumns = []string{
	"home_course_code",
	"home_course_name",
	"partner_course_code",
	"partner_course_name",
	"university",
	"country",
}

// Viewer 发起查询的调用方身份
// UserID 为 nil 表示匿名访问；Privileged 表示管理员
type Viewer struct {
	UserID     *int64
	Privileged bool
}

// Anonymous 匿名调用方
func Anonymous() Viewer { return Viewer{} }

// CourseQuery 课程库检索条件
// 所有筛选项均为可选：nil / 空字符串表示不过滤
type CourseQuery struct {
	Search       string
	University   *string
	Country      *string
	Credits      *float64
	VerifiedOnly bool
	OwnerID      *int64
	Viewer       Viewer

	Page  int
	Limit int
}

// Normalize 返回分页参数修正后的副本
// page < 1 按 1 处理；limit <= 0 取 defaultLimit，超过 maxLimit 截断
func (q CourseQuery) Normalize(defaultLimit, maxLimit int) CourseQuery {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxPageLimit
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	// (page-1)*limit 不得溢出
	if maxPage := math.MaxInt / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset 偏移量 = (page - 1) * limit，不会为负
func (q CourseQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Conditions 按固定顺序生成 WHERE 谓词
// 参数全部以占位符绑定，用户输入不会拼接进 SQL 文本；
// COUNT 与分页 SELECT 共用同一组谓词，保证过滤条件和绑定值一致
func (q CourseQuery) Conditions() []clause.Expression {
	conds := make([]clause.Expression, 0, 7)

	// 1. 审核可见性：非管理员只能看到已审核记录或自己提交的记录
	if vis := VisibilityCondition(q.Viewer); vis != nil {
		conds = append(conds, vis)
	}

	// 2. 关键词：六个字段任一包含即命中
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + EscapeLike(search) + "%"
		parts := make([]string, len(searchColumns))
		vars := make([]interface{}, len(searchColumns))
		for i, col := range searchColumns {
			parts[i] = col + " ILIKE ?"
			vars[i] = pattern
		}
		conds = append(conds, clause.Expr{
			SQL:  "(" + strings.Join(parts, " OR ") + ")",
			Vars: vars,
		})
	}

	// 3. 精确筛选
	if q.University != nil {
		conds = append(conds, clause.Eq{Column: clause.Column{Name: "university"}, Value: *q.University})
	}
	if q.Country != nil {
		conds = append(conds, clause.Eq{Column: clause.Column{Name: "country"}, Value: *q.Country})
	}
	if q.Credits != nil {
		conds = append(conds, clause.Eq{Column: clause.Column{Name: "ects"}, Value: *q.Credits})
	}
	if q.VerifiedOnly {
		conds = append(conds, clause.Eq{Column: clause.Column{Name: "verified"}, Value: true})
	}
	if q.OwnerID != nil {
		conds = append(conds, clause.Eq{Column: clause.Column{Name: "user_id"}, Value: *q.OwnerID})
	}

	return conds
}

// VisibilityCondition 审核可见性谓词，管理员返回 nil
func VisibilityCondition(v Viewer) clause.Expression {
	if v.Privileged {
		return nil
	}
	if v.UserID != nil {
		return clause.Expr{SQL: "(approved = ? OR user_id = ?)", Vars: []interface{}{true, *v.UserID}}
	}
	return clause.Eq{Column: clause.Column{Name: "approved"}, Value: true}
}

// likeEscaper 转义 LIKE/ILIKE 通配符，PostgreSQL 默认转义符为反斜杠
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike 转义关键词中的 % _ \，使其按字面匹配
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
