package models

import "time"

// Role IDs. Reviewers can listen, review and decide; admins additionally
// manage screening config and may override listen timers.
const (
	RoleReviewer = 1
	RoleAdmin    = 2
	RoleArtist   = 3
)

type User struct {
	UserID     int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	FullName   string     `gorm:"column:full_name" json:"full_name"`
	ArtistName *string    `gorm:"column:artist_name" json:"artist_name,omitempty"`
	Genres     *string    `gorm:"column:genres" json:"genres,omitempty"` // comma separated, artists only
	RoleID     int        `gorm:"column:role_id" json:"role_id"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

// CanReview reports whether the user may file reviews and decisions.
func (u *User) CanReview() bool {
	return u.RoleID == RoleReviewer || u.RoleID == RoleAdmin
}

// CanOverrideTimer reports whether the user may bypass the listen timer.
func (u *User) CanOverrideTimer() bool {
	return u.RoleID == RoleAdmin
}
