package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akselna/utveksle.no-sub001/internal/model"
)

// CourseFilterOptions 检索表单下拉选项（仅统计已审核记录）
type CourseFilterOptions struct {
	Universities []string  `json:"universities"`
	Countries    []string  `json:"countries"`
	Credits      []float64 `json:"credits"`
}

// CourseRepository 课程对照数据访问接口
type CourseRepository interface {
	Search(ctx context.Context, q CourseQuery) ([]model.CourseMapping, int64, error)
	GetByID(ctx context.Context, id int64, viewer Viewer) (*model.CourseMapping, error)
	Create(ctx context.Context, m *model.CourseMapping) error
	Update(ctx context.Context, m *model.CourseMapping) error
	Approve(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	ListPending(ctx context.Context, offset, limit int) ([]model.CourseMapping, int64, error)
	ListForExport(ctx context.Context, approvedOnly bool) ([]model.CourseMapping, error)
	FilterOptions(ctx context.Context) (*CourseFilterOptions, error)
}

// courseRepo CourseRepository 的 GORM 实现
type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

// searchBase 检索的公共语句：表 + WHERE 谓词
// 返回的 Session 可安全复用，COUNT 与 SELECT 各自派生，互不污染
func (r *courseRepo) searchBase(ctx context.Context, q CourseQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.CourseMapping{})
	if conds := q.Conditions(); len(conds) > 0 {
		db = db.Clauses(clause.Where{Exprs: conds})
	}
	return db.Session(&gorm.Session{})
}

func (r *courseRepo) Search(ctx context.Context, q CourseQuery) ([]model.CourseMapping, int64, error) {
	if q.Page < 1 || q.Limit < 1 {
		q = q.Normalize(DefaultPageLimit, MaxPageLimit)
	}
	base := r.searchBase(ctx, q)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计课程对照失败: %w", err)
	}

	courses := make([]model.CourseMapping, 0)
	if total == 0 {
		return courses, 0, nil
	}

	if err := searchPage(base, q).Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("查询课程对照失败: %w", err)
	}

	return courses, total, nil
}

// searchPage 在公共语句上追加排序与分页，limit/offset 作为最后两个绑定参数
func searchPage(base *gorm.DB, q CourseQuery) *gorm.DB {
	return base.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Limit(q.Limit).
		Offset(q.Offset())
}

func (r *courseRepo) GetByID(ctx context.Context, id int64, viewer Viewer) (*model.CourseMapping, error) {
	var m model.CourseMapping
	db := r.db.WithContext(ctx).Where("id = ?", id)
	if vis := VisibilityCondition(viewer); vis != nil {
		db = db.Clauses(clause.Where{Exprs: []clause.Expression{vis}})
	}
	if err := db.First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *courseRepo) Create(ctx context.Context, m *model.CourseMapping) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *courseRepo) Update(ctx context.Context, m *model.CourseMapping) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Approve 标记为已审核；已审核记录保留原审核时间
func (r *courseRepo) Approve(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.CourseMapping{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"approved":    true,
			"approved_at": gorm.Expr("COALESCE(approved_at, ?)", at),
			"updated_at":  at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 物理删除（无软删除）
func (r *courseRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CourseMapping{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPending 待审核队列，按提交时间先后排列
func (r *courseRepo) ListPending(ctx context.Context, offset, limit int) ([]model.CourseMapping, int64, error) {
	var courses []model.CourseMapping
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.CourseMapping{}).
		Where("approved = ?", false).
		Session(&gorm.Session{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Owner").
		Offset(offset).Limit(limit).
		Order("created_at ASC, id ASC").
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

func (r *courseRepo) ListForExport(ctx context.Context, approvedOnly bool) ([]model.CourseMapping, error) {
	var courses []model.CourseMapping
	db := r.db.WithContext(ctx)
	if approvedOnly {
		db = db.Where("approved = ?", true)
	}
	err := db.Order("university ASC, home_course_code ASC, id ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) FilterOptions(ctx context.Context) (*CourseFilterOptions, error) {
	opts := &CourseFilterOptions{}
	approved := r.db.WithContext(ctx).
		Model(&model.CourseMapping{}).
		Where("approved = ?", true).
		Session(&gorm.Session{})

	if err := approved.Distinct().Order("university ASC").Pluck("university", &opts.Universities).Error; err != nil {
		return nil, err
	}
	if err := approved.Distinct().Order("country ASC").Pluck("country", &opts.Countries).Error; err != nil {
		return nil, err
	}
	if err := approved.Distinct().Order("ects ASC").Pluck("ects", &opts.Credits).Error; err != nil {
		return nil, err
	}
	return opts, nil
}
