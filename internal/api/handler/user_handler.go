package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/akselna/utveksle.no-sub001/internal/dto"
	"github.com/akselna/utveksle.no-sub001/internal/service"
	"github.com/akselna/utveksle.no-sub001/pkg/response"
)

// UserHandler 用户管理 HTTP 处理器（管理员）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// AssignRole 按邮箱修改用户角色
// PUT /api/v1/admin/users/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.AssignRoleByEmail(c.Request.Context(), req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		case errors.Is(err, service.ErrInvalidRole):
			response.BadRequest(c, 10001, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, user)
}
