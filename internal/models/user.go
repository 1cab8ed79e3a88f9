package models

type Role string

const (
	RoleFrontSales     Role = "front_sales"
	RoleProjectManager Role = "project_manager"
	RoleDeveloper      Role = "developer"
	RoleAdmin          Role = "admin"
)

// ParseRole accepts the stored value or a short alias ("sales", "pm", "dev").
func ParseRole(s string) (Role, bool) {
	switch s {
	case "front_sales", "sales":
		return RoleFrontSales, true
	case "project_manager", "pm":
		return RoleProjectManager, true
	case "developer", "dev":
		return RoleDeveloper, true
	case "admin":
		return RoleAdmin, true
	}
	return "", false
}

type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	ChatID    int64  `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `gorm:"type:varchar(20);default:'developer'" json:"role"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManage reports whether the user may review, hold and reassign work.
func (u *User) CanManage() bool {
	return u.Role == RoleProjectManager || u.Role == RoleAdmin
}

// CanCreateOrders reports whether the user may open new orders.
func (u *User) CanCreateOrders() bool {
	return u.Role == RoleFrontSales || u.CanManage()
}

// DisplayName returns "First Last (@username)" with the missing parts omitted.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " (@" + u.Username + ")"
	}
	return name
}

func (User) TableName() string {
	return "users"
}
