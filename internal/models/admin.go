package models

import "time"

// Admin 管理员表
type Admin struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"type:varchar(60);uniqueIndex;not null" json:"name"` // 登录名
	PasswordHash string     `gorm:"type:varchar(200);not null" json:"-"`               // bcrypt 密码散列
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`             // 是否启用
	LastLoginAt  *time.Time `json:"lastLoginAt"`                                       // 最近登录时间
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
