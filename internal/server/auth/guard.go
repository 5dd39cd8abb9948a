package auth

import (
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

// RequireOwnerOrRole allows the operation when p owns the resource or holds
// role. A zero-value principal never passes.
func RequireOwnerOrRole(p models.Principal, ownerID string, role models.Role) error {
	if p.AccountID == "" {
		return common.ErrForbidden
	}
	if p.AccountID == ownerID {
		return nil
	}
	if role != "" && p.Role == role {
		return nil
	}
	return common.ErrForbidden
}
