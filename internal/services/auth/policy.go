package auth

import (
	"fmt"

	"github.com/magabrotheeeer/user-service/internal/lib/apperr"
	"github.com/magabrotheeeer/user-service/internal/models"
)

// CanAccess разрешает доступ к записи владельца ownerID самому владельцу и суперпользователю.
func CanAccess(actor *models.User, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.IsSuperuser || actor.ID == ownerID
}

// Authorize возвращает apperr.ErrForbidden, если CanAccess запрещает доступ.
func Authorize(actor *models.User, ownerID string) error {
	if !CanAccess(actor, ownerID) {
		return fmt.Errorf("auth.Authorize: %w", apperr.ErrForbidden)
	}
	return nil
}

// RequireSuperuser пропускает только суперпользователя.
func RequireSuperuser(actor *models.User) error {
	if actor == nil || !actor.IsSuperuser {
		return fmt.Errorf("auth.RequireSuperuser: %w", apperr.ErrForbidden)
	}
	return nil
}
