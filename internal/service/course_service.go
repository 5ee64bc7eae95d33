package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akselna/utveksle.no-sub001/config"
	"github.com/akselna/utveksle.no-sub001/internal/dto"
	"github.com/akselna/utveksle.no-sub001/internal/model"
	"github.com/akselna/utveksle.no-sub001/internal/repository"
	apperrors "github.com/akselna/utveksle.no-sub001/pkg/errors"
	"github.com/akselna/utveksle.no-sub001/pkg/response"
)

// ── 课程库业务错误 ──

var (
	ErrCourseNotFound        = errors.New("课程对照不存在")
	ErrCourseConflict        = errors.New("该课程对照已存在")
	ErrCourseForbidden       = errors.New("无权操作课程对照")
	ErrCourseUnauthenticated = errors.New("需要登录")
	ErrCourseQueryFailed     = errors.New("查询失败")
)

// filterOptionsCacheKey 检索筛选项缓存键
const filterOptionsCacheKey = "course:filter-options"

// Cache 课程服务使用的 JSON 缓存，*redis.Client 实现该接口
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CourseService 课程库业务接口
type CourseService interface {
	Search(ctx context.Context, req *dto.CourseSearchRequest, viewer repository.Viewer) (*dto.CourseSearchResponse, error)
	GetByID(ctx context.Context, id int64, viewer repository.Viewer) (*dto.CourseResponse, error)
	Create(ctx context.Context, req *dto.CreateCourseRequest, viewer repository.Viewer) (*dto.CourseResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateCourseRequest, viewer repository.Viewer) (*dto.CourseResponse, error)
	Approve(ctx context.Context, id int64, viewer repository.Viewer) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id int64, viewer repository.Viewer) error
	ListPending(ctx context.Context, page, limit int, viewer repository.Viewer) ([]dto.CourseResponse, int64, error)
	FilterOptions(ctx context.Context) (*repository.CourseFilterOptions, error)
}

type courseService struct {
	cfg    *config.SearchConfig
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewCourseService 创建 CourseService 实例，cache 可为 nil
func NewCourseService(cfg *config.SearchConfig, repo *repository.Repository, cache Cache, logger *zap.Logger) CourseService {
	return &courseService{
		cfg:    cfg,
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Search ──────────────────────

func (s *courseService) Search(ctx context.Context, req *dto.CourseSearchRequest, viewer repository.Viewer) (*dto.CourseSearchResponse, error) {
	q := req.ToQuery(viewer, s.cfg.DefaultLimit, s.cfg.MaxLimit)

	courses, total, err := s.repo.Course.Search(ctx, q)
	if err != nil {
		s.logger.Error("检索课程对照失败",
			zap.String("search", q.Search),
			zap.Int("page", q.Page),
			zap.Int("limit", q.Limit),
			zap.Error(err))
		return nil, ErrCourseQueryFailed
	}

	list := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		list = append(list, *toCourseResponse(&courses[i], viewer))
	}

	return &dto.CourseSearchResponse{
		Courses:    list,
		Pagination: response.NewPagination(total, q.Page, q.Limit),
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id int64, viewer repository.Viewer) (*dto.CourseResponse, error) {
	m, err := s.repo.Course.GetByID(ctx, id, viewer)
	if err != nil {
		// 不可见的记录同样按不存在处理
		if apperrors.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程对照失败", zap.Int64("id", id), zap.Error(err))
		return nil, ErrCourseQueryFailed
	}
	return toCourseResponse(m, viewer), nil
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, viewer repository.Viewer) (*dto.CourseResponse, error) {
	if viewer.UserID == nil {
		return nil, ErrCourseUnauthenticated
	}

	m := &model.CourseMapping{
		HomeCourseCode:    normalizeCode(req.HomeCourseCode),
		HomeCourseName:    strings.TrimSpace(req.HomeCourseName),
		PartnerCourseCode: normalizeCode(req.PartnerCourseCode),
		PartnerCourseName: strings.TrimSpace(req.PartnerCourseName),
		University:        strings.TrimSpace(req.University),
		Country:           strings.TrimSpace(req.Country),
		ECTS:              req.ECTS,
		Semester:          strings.TrimSpace(req.Semester),
		Verified:          req.Verified,
		SourceURL:         trimOptional(req.SourceURL),
		UserID:            viewer.UserID,
	}

	// 管理员提交直接生效，其余进入待审核队列
	if viewer.Privileged {
		now := s.now()
		m.Approved = true
		m.ApprovedAt = &now
	}

	if err := s.repo.Course.Create(ctx, m); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrCourseConflict
		}
		s.logger.Error("创建课程对照失败", zap.Int64("user_id", *viewer.UserID), zap.Error(err))
		return nil, err
	}

	s.invalidateFilterOptions(ctx)
	s.logger.Info("课程对照已提交",
		zap.Int64("id", m.ID),
		zap.Int64("user_id", *viewer.UserID),
		zap.Bool("approved", m.Approved))

	return toCourseResponse(m, viewer), nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id int64, req *dto.UpdateCourseRequest, viewer repository.Viewer) (*dto.CourseResponse, error) {
	if err := requirePrivileged(viewer); err != nil {
		return nil, err
	}

	m, err := s.repo.Course.GetByID(ctx, id, viewer)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程对照失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if req.HomeCourseCode != nil {
		m.HomeCourseCode = normalizeCode(*req.HomeCourseCode)
	}
	if req.HomeCourseName != nil {
		m.HomeCourseName = strings.TrimSpace(*req.HomeCourseName)
	}
	if req.PartnerCourseCode != nil {
		m.PartnerCourseCode = normalizeCode(*req.PartnerCourseCode)
	}
	if req.PartnerCourseName != nil {
		m.PartnerCourseName = strings.TrimSpace(*req.PartnerCourseName)
	}
	if req.University != nil {
		m.University = strings.TrimSpace(*req.University)
	}
	if req.Country != nil {
		m.Country = strings.TrimSpace(*req.Country)
	}
	if req.ECTS != nil {
		m.ECTS = *req.ECTS
	}
	if req.Semester != nil {
		m.Semester = strings.TrimSpace(*req.Semester)
	}
	if req.Verified != nil {
		m.Verified = *req.Verified
	}
	if req.SourceURL != nil {
		m.SourceURL = trimOptional(req.SourceURL)
	}

	if err := s.repo.Course.Update(ctx, m); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrCourseConflict
		}
		s.logger.Error("更新课程对照失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	s.invalidateFilterOptions(ctx)
	return toCourseResponse(m, viewer), nil
}

// ────────────────────── Approve ──────────────────────

// Approve 审核通过；重复审核保持幂等，保留首次审核时间
func (s *courseService) Approve(ctx context.Context, id int64, viewer repository.Viewer) (*dto.CourseResponse, error) {
	if err := requirePrivileged(viewer); err != nil {
		return nil, err
	}

	if err := s.repo.Course.Approve(ctx, id, s.now()); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("审核课程对照失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	s.invalidateFilterOptions(ctx)
	s.logger.Info("课程对照已审核", zap.Int64("id", id), zap.Int64p("approved_by", viewer.UserID))

	return s.GetByID(ctx, id, viewer)
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id int64, viewer repository.Viewer) error {
	if err := requirePrivileged(viewer); err != nil {
		return err
	}

	if err := s.repo.Course.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return ErrCourseNotFound
		}
		s.logger.Error("删除课程对照失败", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.invalidateFilterOptions(ctx)
	s.logger.Info("课程对照已删除", zap.Int64("id", id), zap.Int64p("deleted_by", viewer.UserID))
	return nil
}

// ────────────────────── ListPending ──────────────────────

func (s *courseService) ListPending(ctx context.Context, page, limit int, viewer repository.Viewer) ([]dto.CourseResponse, int64, error) {
	if err := requirePrivileged(viewer); err != nil {
		return nil, 0, err
	}

	q := repository.CourseQuery{Page: page, Limit: limit}.Normalize(s.cfg.DefaultLimit, s.cfg.MaxLimit)

	courses, total, err := s.repo.Course.ListPending(ctx, q.Offset(), q.Limit)
	if err != nil {
		s.logger.Error("查询待审核课程对照失败", zap.Error(err))
		return nil, 0, ErrCourseQueryFailed
	}

	list := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		list = append(list, *toCourseResponse(&courses[i], viewer))
	}
	return list, total, nil
}

// ────────────────────── FilterOptions ──────────────────────

func (s *courseService) FilterOptions(ctx context.Context) (*repository.CourseFilterOptions, error) {
	if s.cache != nil {
		var cached repository.CourseFilterOptions
		if err := s.cache.GetJSON(ctx, filterOptionsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	opts, err := s.repo.Course.FilterOptions(ctx)
	if err != nil {
		s.logger.Error("查询检索筛选项失败", zap.Error(err))
		return nil, ErrCourseQueryFailed
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, filterOptionsCacheKey, opts, s.cfg.FilterCacheTTL); err != nil {
			s.logger.Warn("写入筛选项缓存失败", zap.Error(err))
		}
	}
	return opts, nil
}

// ── 内部辅助方法 ──

func (s *courseService) invalidateFilterOptions(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, filterOptionsCacheKey); err != nil {
		s.logger.Warn("清除筛选项缓存失败", zap.Error(err))
	}
}

// requirePrivileged 管理员操作校验
// 运维命令行以无用户 ID 的管理员身份调用
func requirePrivileged(viewer repository.Viewer) error {
	if viewer.Privileged {
		return nil
	}
	if viewer.UserID == nil {
		return ErrCourseUnauthenticated
	}
	return ErrCourseForbidden
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// toCourseResponse 提交人信息仅对管理员和提交人本人可见
func toCourseResponse(m *model.CourseMapping, viewer repository.Viewer) *dto.CourseResponse {
	resp := &dto.CourseResponse{
		ID:                m.ID,
		HomeCourseCode:    m.HomeCourseCode,
		HomeCourseName:    m.HomeCourseName,
		PartnerCourseCode: m.PartnerCourseCode,
		PartnerCourseName: m.PartnerCourseName,
		University:        m.University,
		Country:           m.Country,
		ECTS:              m.ECTS,
		Semester:          m.Semester,
		Verified:          m.Verified,
		Approved:          m.Approved,
		SourceURL:         m.SourceURL,
	}
	if d := m.DisplayDate(); !d.IsZero() {
		resp.ApprovedDate = d.Format("2006-01-02")
	}

	if viewer.Privileged || (viewer.UserID != nil && m.OwnedBy(*viewer.UserID)) {
		resp.UserID = m.UserID
	}
	if viewer.Privileged && m.Owner != nil {
		resp.SubmittedBy = &dto.CourseOwnerResponse{
			ID:    m.Owner.ID,
			Name:  m.Owner.Name,
			Email: m.Owner.Email,
		}
	}
	return resp
}
