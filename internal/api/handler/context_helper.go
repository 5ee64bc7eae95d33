package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akselna/utveksle.no-sub001/internal/model"
	"github.com/akselna/utveksle.no-sub001/internal/repository"
	"github.com/akselna/utveksle.no-sub001/pkg/response"
)

// 认证中间件注入的上下文键
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// ViewerFromContext 由认证信息构造调用方身份，未认证时为匿名
func ViewerFromContext(c *gin.Context) repository.Viewer {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return repository.Anonymous()
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return repository.Anonymous()
	}
	return repository.Viewer{
		UserID:     &id,
		Privileged: c.GetString(CtxRole) == model.RoleAdmin,
	}
}

// tokenInfo 当前请求 Token 的 jti 与过期时间
func tokenInfo(c *gin.Context) (string, time.Time) {
	return c.GetString(CtxTokenJTI), c.GetTime(CtxTokenExp)
}

// parseID 解析路径参数 :id，失败时写入 400 响应
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "ID 无效")
		return 0, false
	}
	return id, true
}
