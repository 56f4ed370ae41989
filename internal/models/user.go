package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/legendsansar/legendsansar/internal/db"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Username        string `gorm:"size:255;not null;uniqueIndex" json:"username" validate:"required"`
	Email           string `gorm:"size:100;not null;uniqueIndex" json:"email" validate:"required,email"`
	Password        string `gorm:"size:255;not null" json:"-"`
	IsAdmin         bool   `gorm:"default:false" json:"isAdmin"`
	IsVerified      bool   `gorm:"default:false" json:"isVerified"`
	ProfileImageURL string `gorm:"type:text" json:"profileImageUrl"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserOption configures a User at creation time.
type UserOption func(*User)

func WithAdmin(admin bool) UserOption {
	return func(u *User) { u.IsAdmin = admin }
}

func WithProfileImageURL(url string) UserOption {
	return func(u *User) { u.ProfileImageURL = url }
}

// NewUser persists a new unverified user. The password must already be hashed.
func NewUser(ctx context.Context, gormDB *gorm.DB, username, email, hashedPassword string, opts ...UserOption) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "user creation canceled")
	}

	u := &User{
		Username: username,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: hashedPassword,
	}

	for _, opt := range opts {
		opt(u)
	}

	if err := gormDB.WithContext(ctx).Create(u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return nil, utils.NewError(utils.ErrBadRequest.Code, "User already exists").
				WithField("email", "Email is already registered")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create user")
	}

	return u, nil
}

// UserBy fetches a single user matching the condition.
func UserBy(ctx context.Context, gormDB *gorm.DB, condition string, args ...interface{}) (*User, error) {
	var u User
	if err := gormDB.WithContext(ctx).Where(condition, args...).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "User not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get user")
	}
	return &u, nil
}

const userCacheTTL = 30 * time.Minute

// CachedUserByID reads a user through the Redis cache, falling back to the
// database. A nil Redis client degrades to a plain database read.
func CachedUserByID(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, id string) (*User, error) {
	key := "user:" + id

	if rclient != nil {
		if cached, err := rclient.Get(ctx, key).Result(); err == nil && cached != "" {
			var u User
			if err := json.Unmarshal([]byte(cached), &u); err == nil {
				return &u, nil
			}
		}
	}

	u, err := UserBy(ctx, gormDB, "id = ?", id)
	if err != nil {
		return nil, err
	}

	if rclient != nil {
		if data, err := json.Marshal(u); err == nil {
			rclient.Set(ctx, key, data, userCacheTTL)
		}
	}

	return u, nil
}

// InvalidateUserCache drops the cached copy after a profile update.
func InvalidateUserCache(ctx context.Context, rclient *db.RedisClient, id string) {
	if rclient != nil {
		rclient.Del(ctx, "user:"+id)
	}
}

// SaveUser persists changes made to a loaded user and refreshes the cache.
func SaveUser(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, u *User) error {
	if err := gormDB.WithContext(ctx).Save(u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return utils.NewError(utils.ErrBadRequest.Code, "Username already taken").
				WithField("username", "This username is already in use")
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update user")
	}
	InvalidateUserCache(ctx, rclient, u.ID.String())
	return nil
}
