package identity

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/models"
)

// SignupRequest is the registration form. StudentID and RoomNumber are only
// required for student addresses; admins get models.NotApplicable.
type SignupRequest struct {
	StudentID       string
	Name            string
	Email           string
	DormName        string
	RoomNumber      string
	Password        string
	ConfirmPassword string
}

func (r *SignupRequest) Normalize() {
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = common.NormalizeEmail(r.Email)
	r.DormName = strings.TrimSpace(r.DormName)
	r.RoomNumber = strings.TrimSpace(r.RoomNumber)
}

// Validate checks the form and returns the role the account will get.
func (r *SignupRequest) Validate() (models.Role, error) {
	if r.Name == "" || r.Email == "" || r.DormName == "" || r.Password == "" {
		return models.RoleNone, fmt.Errorf("%w: name, email, dorm and password are required", common.ErrValidation)
	}

	role := models.RoleForEmail(r.Email)
	if role == models.RoleNone {
		return models.RoleNone, fmt.Errorf("%w: use a %s (student) or %s (admin) address",
			common.ErrValidation, models.StudentDomain, models.AdminDomain)
	}

	if role == models.RoleStudent && (r.StudentID == "" || r.RoomNumber == "") {
		return models.RoleNone, fmt.Errorf("%w: student ID and room number are required", common.ErrValidation)
	}

	if r.Password != r.ConfirmPassword {
		return models.RoleNone, fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}

	return role, nil
}

func (r *SignupRequest) toUser(role models.Role) models.User {
	u := models.User{
		StudentID:  r.StudentID,
		Name:       r.Name,
		Email:      r.Email,
		DormName:   r.DormName,
		RoomNumber: r.RoomNumber,
		Password:   r.Password,
		Role:       role,
	}
	if role == models.RoleAdmin {
		u.StudentID = models.NotApplicable
		u.RoomNumber = models.NotApplicable
	}
	return u
}
