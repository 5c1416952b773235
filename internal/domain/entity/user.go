package entity

import "time"

// Role etiqueta de rol de usuario (conjunto cerrado).
type Role string

// Roles válidos para User.
const (
	RoleCustomer         Role = "customer"
	RoleSalesperson      Role = "salesperson"
	RoleStoreAdmin       Role = "store_admin"
	RoleSalesManager     Role = "sales_manager"
	RoleMarketingManager Role = "marketing_manager"
	RoleSupportExecutive Role = "support_executive"
	RoleStoreOwner       Role = "store_owner"
	RoleAdmin            Role = "admin"
	RoleSuperAdmin       Role = "super_admin"
)

// AllRoles conjunto cerrado de roles, en el orden en que los expone el backend.
var AllRoles = []Role{
	RoleCustomer, RoleSalesperson, RoleStoreAdmin, RoleSalesManager,
	RoleMarketingManager, RoleSupportExecutive, RoleStoreOwner,
	RoleAdmin, RoleSuperAdmin,
}

// Valid indica si el rol pertenece al conjunto cerrado.
func (r Role) Valid() bool {
	for _, v := range AllRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User snapshot de identidad tal como lo devuelve el backend.
// El cliente solo observa: nunca crea ni borra usuarios localmente.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	FullName           string     `json:"full_name"`
	Role               Role       `json:"role"`
	IsActive           bool       `json:"is_active"`
	HasPassword        bool       `json:"has_password"`
	NeedsPasswordSetup bool       `json:"needs_password_setup"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}
