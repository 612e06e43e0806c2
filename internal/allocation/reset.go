package allocation

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tripti/internal/common"
	"github.com/dmitrijs2005/tripti/internal/models"
)

// ClearAllUserData drops every token, every login entry and every
// non-admin account. The month configuration is not touched.
func (e *Engine) ClearAllUserData(ctx context.Context) error {
	var users, tokens int
	err := e.store.Update(ctx, func(snap *models.Snapshot) error {
		users, tokens = len(snap.Users), len(snap.Tokens)
		snap.RetainAdmins()
		snap.Tokens = []models.TokenRecord{}
		snap.LoginLogs = []models.LoginLog{}
		users -= len(snap.Users)
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Warn(ctx, "all user data cleared", "users_removed", users, "tokens_removed", tokens)
	return nil
}

// ClearStudentTokens removes one student's tokens and returns how many.
func (e *Engine) ClearStudentTokens(ctx context.Context, studentID string) (int, error) {
	var removed int
	err := e.store.Update(ctx, func(snap *models.Snapshot) error {
		removed = snap.RemoveTokensByStudent(studentID)
		if removed == 0 && snap.FindUserByID(studentID) == nil {
			return fmt.Errorf("student %s: %w", studentID, common.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.log.Warn(ctx, "student tokens cleared", "student_id", studentID, "removed", removed)
	return removed, nil
}
