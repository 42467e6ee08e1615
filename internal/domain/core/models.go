package core

import "time"

// User is one employee account. EmpID is the generated OAIDnnnnn badge
// number; RoleID points into the role graph.
type User struct {
	ID          string    `json:"id"`
	EmpID       string    `json:"empId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	MobileNo    string    `json:"mobileNo"`
	RoleID      string    `json:"roleId"`
	RoleName    string    `json:"roleName,omitempty"`
	Position    string    `json:"position"`
	Designation string    `json:"designation"`
	Department  string    `json:"department"`
	Status      bool      `json:"status"`
	DOJ         time.Time `json:"doj"`
	KmsCharge   float64   `json:"kmsCharge"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	PasswordHash string `json:"-"`
}

// NewUser is the creation payload.
type NewUser struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	MobileNo    string    `json:"mobileNo"`
	Password    string    `json:"password"`
	Position    string    `json:"position"`
	Designation string    `json:"designation"`
	Department  string    `json:"department"`
	DOJ         time.Time `json:"doj"`
	KmsCharge   float64   `json:"kmsCharge"`

	// AssignRoleID overrides placement; required when the creator holds
	// the root role.
	AssignRoleID string `json:"assignRoleId"`
}

// Role names with special meaning in the provisioning flows.
const (
	RoleSuperAdmin = "Super Admin"
	RoleAdmin      = "Admin"
	RoleEmployee   = "Employee"
	RoleIntern     = "Intern"
)
