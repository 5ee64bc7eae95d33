package model

// User 用户表 — 对应 users
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"                    json:"id"`
	Email        string `gorm:"type:varchar(255);not null"                  json:"email"`
	Name         string `gorm:"type:varchar(100);not null"                  json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                  json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
