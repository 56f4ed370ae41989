package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"gorm.io/gorm"
)

// Bookmark is a user's saved reference to a folktale. The composite unique
// index enforces one bookmark per (user, folktale) pair at the storage layer.
type Bookmark struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_folktale" json:"userId"`
	FolktaleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_folktale" json:"folktaleId"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Folktale Folktale `gorm:"foreignKey:FolktaleID" json:"-"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// FolktaleSummary is the folktale projection attached to bookmark responses.
type FolktaleSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Region   string    `json:"region"`
	Genre    string    `json:"genre"`
	AgeGroup string    `json:"ageGroup"`
	ImageURL string    `json:"imageUrl"`
	AudioURL string    `json:"audioUrl"`
}

// BookmarkView is a bookmark expanded with its folktale's summary fields.
type BookmarkView struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Folktale  FolktaleSummary `json:"folktale"`
	CreatedAt time.Time       `json:"createdAt"`
}

func bookmarkView(b Bookmark) BookmarkView {
	return BookmarkView{
		ID:     b.ID,
		UserID: b.UserID,
		Folktale: FolktaleSummary{
			ID:       b.Folktale.ID,
			Title:    b.Folktale.Title,
			Region:   b.Folktale.Region,
			Genre:    b.Folktale.Genre,
			AgeGroup: b.Folktale.AgeGroup,
			ImageURL: b.Folktale.ImageURL,
			AudioURL: b.Folktale.AudioURL,
		},
		CreatedAt: b.CreatedAt,
	}
}

// AddBookmark saves a folktale for a user.
func AddBookmark(ctx context.Context, gormDB *gorm.DB, userID, folktaleID uuid.UUID) (*BookmarkView, error) {
	if err := gormDB.WithContext(ctx).First(&Folktale{}, "id = ?", folktaleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Folktale not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get folktale")
	}

	var existing Bookmark
	err := gormDB.WithContext(ctx).
		Where("user_id = ? AND folktale_id = ?", userID, folktaleID).
		First(&existing).Error
	if err == nil {
		return nil, utils.NewError(utils.ErrBadRequest.Code, "Folktale already bookmarked")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check existing bookmark")
	}

	bookmark := Bookmark{UserID: userID, FolktaleID: folktaleID}
	if err := gormDB.WithContext(ctx).Create(&bookmark).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return nil, utils.NewError(utils.ErrBadRequest.Code, "Folktale already bookmarked")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to save bookmark")
	}

	var saved Bookmark
	if err := gormDB.WithContext(ctx).Preload("Folktale").First(&saved, "id = ?", bookmark.ID).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load bookmark")
	}

	view := bookmarkView(saved)
	return &view, nil
}

// RemoveBookmark deletes the (user, folktale) bookmark; a second call for the
// same pair reports not-found rather than silently succeeding.
func RemoveBookmark(ctx context.Context, gormDB *gorm.DB, userID, folktaleID uuid.UUID) error {
	result := gormDB.WithContext(ctx).
		Where("user_id = ? AND folktale_id = ?", userID, folktaleID).
		Delete(&Bookmark{})
	if result.Error != nil {
		return utils.WrapError(result.Error, utils.ErrInternalServerError.Code, "Failed to remove bookmark")
	}
	if result.RowsAffected == 0 {
		return utils.NewError(utils.ErrNotFound.Code, "Bookmark not found")
	}
	return nil
}

// BookmarksForUser lists the user's bookmarks with folktale summaries.
// Folktale deletion removes its bookmarks in the same transaction, so no
// entry here can reference a dead folktale.
func BookmarksForUser(ctx context.Context, gormDB *gorm.DB, userID uuid.UUID) ([]BookmarkView, error) {
	var bookmarks []Bookmark
	err := gormDB.WithContext(ctx).Preload("Folktale").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to list bookmarks")
	}

	views := make([]BookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		views = append(views, bookmarkView(b))
	}
	return views, nil
}
