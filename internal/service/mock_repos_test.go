package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/akselna/utveksle.no-sub001/internal/model"
	"github.com/akselna/utveksle.no-sub001/internal/repository"
	"github.com/akselna/utveksle.no-sub001/pkg/redis"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	user.CreatedAt = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id int64, role string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

// ── Mock CourseRepository ──

// mockCourseRepo 内存实现，按与 SQL 相同的规则过滤
type mockCourseRepo struct {
	courses map[int64]*model.CourseMapping
	users   *mockUserRepo
	nextID  int64

	searchErr error
	lastQuery repository.CourseQuery
	optsCalls int

	lastPendingOffset int
	lastPendingLimit  int
}

func newMockCourseRepo(users *mockUserRepo) *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[int64]*model.CourseMapping), users: users, nextID: 1}
}

func visibleTo(m *model.CourseMapping, v repository.Viewer) bool {
	if v.Privileged {
		return true
	}
	if m.Approved {
		return true
	}
	return v.UserID != nil && m.OwnedBy(*v.UserID)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m *mockCourseRepo) matches(c *model.CourseMapping, q repository.CourseQuery) bool {
	if !visibleTo(c, q.Viewer) {
		return false
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		hit := false
		for _, f := range []string{c.HomeCourseCode, c.HomeCourseName, c.PartnerCourseCode, c.PartnerCourseName, c.University, c.Country} {
			if containsFold(f, s) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if q.University != nil && c.University != *q.University {
		return false
	}
	if q.Country != nil && c.Country != *q.Country {
		return false
	}
	if q.Credits != nil && c.ECTS != *q.Credits {
		return false
	}
	if q.VerifiedOnly && !c.Verified {
		return false
	}
	if q.OwnerID != nil && !c.OwnedBy(*q.OwnerID) {
		return false
	}
	return true
}

func (m *mockCourseRepo) sorted(desc bool) []*model.CourseMapping {
	list := make([]*model.CourseMapping, 0, len(m.courses))
	for _, c := range m.courses {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if desc {
			return list[i].ID > list[j].ID
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (m *mockCourseRepo) Search(_ context.Context, q repository.CourseQuery) ([]model.CourseMapping, int64, error) {
	m.lastQuery = q
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}

	var hits []model.CourseMapping
	for _, c := range m.sorted(true) {
		if m.matches(c, q) {
			hits = append(hits, *c)
		}
	}

	total := int64(len(hits))
	start := q.Offset()
	if start >= len(hits) {
		return []model.CourseMapping{}, total, nil
	}
	end := start + q.Limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[start:end], total, nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id int64, viewer repository.Viewer) (*model.CourseMapping, error) {
	c, ok := m.courses[id]
	if !ok || !visibleTo(c, viewer) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCourseRepo) duplicate(c *model.CourseMapping) bool {
	for _, existing := range m.courses {
		if existing.ID != c.ID &&
			existing.HomeCourseCode == c.HomeCourseCode &&
			existing.PartnerCourseCode == c.PartnerCourseCode &&
			existing.University == c.University {
			return true
		}
	}
	return false
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.CourseMapping) error {
	if m.duplicate(c) {
		return gorm.ErrDuplicatedKey
	}
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.courses[c.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Update(_ context.Context, c *model.CourseMapping) error {
	if _, ok := m.courses[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.duplicate(c) {
		return gorm.ErrDuplicatedKey
	}
	cp := *c
	m.courses[c.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Approve(_ context.Context, id int64, at time.Time) error {
	c, ok := m.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Approved = true
	if c.ApprovedAt == nil {
		c.ApprovedAt = &at
	}
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) ListPending(_ context.Context, offset, limit int) ([]model.CourseMapping, int64, error) {
	m.lastPendingOffset, m.lastPendingLimit = offset, limit
	var pending []model.CourseMapping
	for _, c := range m.sorted(false) {
		if c.Approved {
			continue
		}
		cp := *c
		if cp.UserID != nil && m.users != nil {
			cp.Owner, _ = m.users.GetByID(context.Background(), *cp.UserID)
		}
		pending = append(pending, cp)
	}

	total := int64(len(pending))
	if offset >= len(pending) {
		return []model.CourseMapping{}, total, nil
	}
	end := offset + limit
	if end > len(pending) {
		end = len(pending)
	}
	return pending[offset:end], total, nil
}

func (m *mockCourseRepo) ListForExport(_ context.Context, approvedOnly bool) ([]model.CourseMapping, error) {
	var result []model.CourseMapping
	for _, c := range m.sorted(false) {
		if approvedOnly && !c.Approved {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) FilterOptions(_ context.Context) (*repository.CourseFilterOptions, error) {
	m.optsCalls++
	uni := map[string]bool{}
	country := map[string]bool{}
	credits := map[float64]bool{}
	opts := &repository.CourseFilterOptions{Universities: []string{}, Countries: []string{}, Credits: []float64{}}
	for _, c := range m.sorted(false) {
		if !c.Approved {
			continue
		}
		if !uni[c.University] {
			uni[c.University] = true
			opts.Universities = append(opts.Universities, c.University)
		}
		if !country[c.Country] {
			country[c.Country] = true
			opts.Countries = append(opts.Countries, c.Country)
		}
		if !credits[c.ECTS] {
			credits[c.ECTS] = true
			opts.Credits = append(opts.Credits, c.ECTS)
		}
	}
	sort.Strings(opts.Universities)
	sort.Strings(opts.Countries)
	sort.Float64s(opts.Credits)
	return opts, nil
}

// ── Mock Cache / TokenBlacklist ──

type mockCache struct {
	data    map[string][]byte
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	c.deletes++
	return nil
}

type mockBlacklist struct {
	tokens map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (b *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.tokens[jti] = ttl
	return nil
}

type mockRevoker struct {
	revoked map[int64]time.Time
	ttl     time.Duration
}

func newMockRevoker() *mockRevoker {
	return &mockRevoker{revoked: make(map[int64]time.Time)}
}

func (r *mockRevoker) RevokeUserTokens(_ context.Context, userID int64, at time.Time, ttl time.Duration) error {
	r.revoked[userID] = at
	r.ttl = ttl
	return nil
}
