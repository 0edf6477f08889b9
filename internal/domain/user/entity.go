package user

import "time"

type User struct {
	ID           string
	EmployeeID   *string
	CompanyID    string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

var RoleValues = []string{
	string(RoleEmployee),
	string(RoleManager),
	string(RoleAdmin),
}
