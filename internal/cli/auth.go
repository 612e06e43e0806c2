package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/identity"
	"github.com/dmitrijs2005/tripti/internal/models"
)

// Signup walks through the registration form. Students are asked for a
// student ID and room, admins are not.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "University email", a.out)
	if err != nil {
		return err
	}

	req := identity.SignupRequest{Email: email}
	role := identity.DeriveRole(email)
	if role == models.RoleNone {
		return fmt.Errorf("%w: use a %s (student) or %s (admin) address",
			common.ErrValidation, models.StudentDomain, models.AdminDomain)
	}

	if role == models.RoleStudent {
		if req.StudentID, err = getSimpleText(a.reader, "Student ID", a.out); err != nil {
			return err
		}
	}
	if req.Name, err = getSimpleText(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if req.DormName, err = getSimpleText(a.reader, "Dorm name", a.out); err != nil {
		return err
	}
	if role == models.RoleStudent {
		if req.RoomNumber, err = getSimpleText(a.reader, "Room number", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	again, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	req.Password = string(password)
	req.ConfirmPassword = string(again)

	a.println("Creating account...")
	u, err := a.svc.Identity.Register(ctx, req)
	if err != nil {
		return err
	}

	a.printf("Account created for %s (%s). You can now log in.\n", u.Email, u.Role)
	return nil
}

// Login asks for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.svc.Identity.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	a.printf("Welcome, %s! Logged in as %s.\n", s.User.Name, s.User.Role)
	return nil
}

// Forgot answers identically whether or not the account exists.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	if err := a.svc.Identity.RequestPasswordReset(ctx, email); err != nil {
		return err
	}

	a.printf("If an account exists for %s, reset instructions have been sent.\n", common.NormalizeEmail(email))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.svc.Identity.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}
