package dto

// ── 用户模块 DTO ──

// AssignRoleRequest 按邮箱分配角色（管理员）
type AssignRoleRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Role  string `json:"role"  binding:"required,oneof=student admin"`
}
