package account

import (
	"time"

	"github.com/frahmantamala/shopfront/internal/core/role"
)

type Account struct {
	ID         int64     `gorm:"primaryKey"`
	Username   string    `gorm:"column:username;size:150;uniqueIndex;not null"`
	Email      string    `gorm:"column:email;size:254;uniqueIndex;not null"`
	FirstName  string    `gorm:"column:first_name;size:150"`
	LastName   string    `gorm:"column:last_name;size:150"`
	Role       role.Role `gorm:"column:role;size:20;index;not null"`
	GoogleSub  *string   `gorm:"column:google_sub;size:255;uniqueIndex"`
	Picture    *string   `gorm:"column:picture"`
	IsStaff    bool      `gorm:"column:is_staff;not null"`
	IsActive   bool      `gorm:"column:is_active;not null"`
	DateJoined time.Time `gorm:"column:date_joined;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}
