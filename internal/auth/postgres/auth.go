package postgres

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/adiwijaya/course-management/internal/auth"
	"github.com/adiwijaya/course-management/internal/user"
)

// Repository backs both the auth service's user lookups and its token store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	if err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	var u user.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// BindGoogleIdentity records a successful provider verification and activates
// the account.
func (r *Repository) BindGoogleIdentity(userID int64, googleID string) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"google_id":       googleID,
			"google_verified": true,
			"status":          user.StatusActive,
			"updated_at":      time.Now(),
		}).Error
}

// Replace drops every token the user holds and inserts the new one in a
// single transaction, keeping the single-active-token policy airtight under
// concurrent logins.
func (r *Repository) Replace(token *auth.AccessToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&auth.AccessToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *Repository) Get(id string) (*auth.AccessToken, error) {
	var token auth.AccessToken
	if err := r.db.Where("id = ?", id).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *Repository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&auth.AccessToken{}).Error
}
