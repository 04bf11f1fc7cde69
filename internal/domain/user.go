package domain

import (
	"strings"
	"time"

	"github.com/talkincode/gomarket/pkg/common"
)

const (
	UserTypeCustomer = "customer"
	UserTypeVendor   = "vendor"
	UserTypeAdmin    = "admin"
)

// User covers every site account: customers, vendors and admins.
// Customers own exactly one cart, vendors own the items they list.
type User struct {
	ID        int64     `json:"id,string" form:"id"`
	Username  string    `gorm:"uniqueIndex" json:"username" form:"username"`
	Email     string    `gorm:"uniqueIndex" json:"email" form:"email"`
	Firstname string    `json:"firstname" form:"firstname"`
	Lastname  string    `json:"lastname" form:"lastname"`
	Phone     string    `json:"phone" form:"phone"`
	Usertype  string    `gorm:"index" json:"usertype" form:"usertype"`
	Address   string    `json:"address" form:"address"`
	Password  string    `json:"-" form:"-"`
	Status    string    `json:"status" form:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "mkt_user"
}

// Fullname is snapshotted onto orders at checkout time.
func (u *User) Fullname() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}

// SetPassword stores a bcrypt hash of the clear text password.
func (u *User) SetPassword(password string) error {
	hashed, err := common.HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// CheckPassword verifies a clear text candidate against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return common.CheckPassword(u.Password, password)
}
