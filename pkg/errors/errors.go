package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation PostgreSQL 唯一约束冲突 SQLSTATE
const pgUniqueViolation = "23505"

// ErrRateLimited 请求频率超限
var ErrRateLimited = errors.New("请求过于频繁，请稍后再试")

// IsUniqueViolation 判断错误是否为唯一约束冲突
// 同时兼容 gorm TranslateError 翻译后的 ErrDuplicatedKey 与原始 pgconn 错误
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// 包装后丢失类型信息时按文本兜底
	return strings.Contains(strings.ToLower(err.Error()), "sqlstate "+pgUniqueViolation)
}

// IsNotFound 判断错误是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
