package policy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/auth"
	"github.com/diewo77/giardino/gate"
	"github.com/diewo77/giardino/internal/models"
)

// UserProfileResolver maps an admin user id to the profile of its role.
type UserProfileResolver struct {
	db       *gorm.DB
	profiles map[models.Role]gate.Profile
}

func NewUserProfileResolver(db *gorm.DB) *UserProfileResolver {
	return &UserProfileResolver{db: db, profiles: RoleProfiles()}
}

// Resolve returns nil for unknown users and unknown roles.
func (r *UserProfileResolver) Resolve(ctx context.Context, userID uuid.UUID) (gate.Profile, error) {
	var u models.AdminUser
	err := r.db.WithContext(ctx).Select("id", "role").Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.profiles[u.Role], nil
}

// PrincipalLoader loads the session principal from the admin users table.
func PrincipalLoader(db *gorm.DB) auth.PrincipalLoader {
	return func(ctx context.Context, userID uuid.UUID) (auth.Principal, bool, error) {
		var u models.AdminUser
		err := db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Principal{}, false, nil
		}
		if err != nil {
			return auth.Principal{}, false, err
		}
		return auth.Principal{UserID: u.ID, Email: u.Email, Role: string(u.Role)}, true, nil
	}
}
