// Package models contains the persisted document types.
package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

const (
	StudentDomain = "@g.bracu.ac.bd"
	AdminDomain   = "@bracu.ac.bd"
)

// NotApplicable fills student-only fields on admin accounts.
const NotApplicable = "N/A"

// RoleForEmail derives the role from the address suffix. The student suffix
// is checked first; any other domain yields RoleNone.
func RoleForEmail(email string) Role {
	e := strings.ToLower(strings.TrimSpace(email))
	switch {
	case strings.HasSuffix(e, StudentDomain) && len(e) > len(StudentDomain):
		return RoleStudent
	case strings.HasSuffix(e, AdminDomain) && len(e) > len(AdminDomain):
		return RoleAdmin
	default:
		return RoleNone
	}
}

// User is the stored account. Password is kept as entered.
type User struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	DormName   string    `json:"dormName"`
	RoomNumber string    `json:"roomNumber"`
	Password   string    `json:"password"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PublicUser is a User without its password.
type PublicUser struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	DormName   string    `json:"dormName"`
	RoomNumber string    `json:"roomNumber"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:         u.ID,
		StudentID:  u.StudentID,
		Name:       u.Name,
		Email:      u.Email,
		DormName:   u.DormName,
		RoomNumber: u.RoomNumber,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
	}
}

func (u *PublicUser) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *PublicUser) IsStudent() bool { return u.Role == RoleStudent }
