package models

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"gorm.io/gorm"
)

type Folktale struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Title    string `gorm:"size:255;not null" json:"title" validate:"required"`
	Content  string `gorm:"type:text;not null" json:"content" validate:"required"`
	Region   string `gorm:"size:100;not null;index" json:"region" validate:"required"`
	Genre    string `gorm:"size:100;not null;index" json:"genre" validate:"required"`
	AgeGroup string `gorm:"size:50;not null;index" json:"ageGroup" validate:"required"`
	ImageURL string `gorm:"type:text;not null" json:"imageUrl" validate:"required,url"`
	AudioURL string `gorm:"type:text" json:"audioUrl"`
	Views    int64  `gorm:"default:0" json:"views"`

	Ratings []Rating `gorm:"foreignKey:FolktaleID;constraint:OnDelete:CASCADE" json:"ratings"`
}

// Rating is one user's 1-5 score for a folktale. The composite unique index
// makes duplicate ratings impossible at the storage layer, closing the race
// the friendly pre-check in RateFolktale leaves open.
type Rating struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	FolktaleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_folktale" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_folktale" json:"userId"`
	Value      int       `gorm:"not null" json:"rating"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}

func (f *Folktale) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AverageRating renders the mean rating to one decimal place, or the
// "No ratings" sentinel when nobody has rated yet.
func (f *Folktale) AverageRating() string {
	if len(f.Ratings) == 0 {
		return "No ratings"
	}
	sum := 0
	for _, r := range f.Ratings {
		sum += r.Value
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(f.Ratings)))
}

// FolktaleOption configures a Folktale at creation time.
type FolktaleOption func(*Folktale)

func WithAudioURL(url string) FolktaleOption {
	return func(f *Folktale) { f.AudioURL = url }
}

// NewFolktale persists a new folktale.
func NewFolktale(ctx context.Context, gormDB *gorm.DB, title, content, region, genre, ageGroup, imageURL string, opts ...FolktaleOption) (*Folktale, error) {
	f := &Folktale{
		Title:    title,
		Content:  content,
		Region:   region,
		Genre:    genre,
		AgeGroup: ageGroup,
		ImageURL: imageURL,
		Ratings:  []Rating{},
	}

	for _, opt := range opts {
		opt(f)
	}

	if err := gormDB.WithContext(ctx).Create(f).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create folktale")
	}
	return f, nil
}

// FolktaleByID fetches a folktale with its ratings.
func FolktaleByID(ctx context.Context, gormDB *gorm.DB, id uuid.UUID) (*Folktale, error) {
	var f Folktale
	if err := gormDB.WithContext(ctx).Preload("Ratings").First(&f, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Folktale not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get folktale")
	}
	if f.Ratings == nil {
		f.Ratings = []Rating{}
	}
	return &f, nil
}

// ListOptions narrows and pages a folktale listing.
type ListOptions struct {
	Page     int
	Limit    int
	Region   string
	Genre    string
	AgeGroup string
	Search   string
}

// ListFolktales returns one page of folktales plus the total match count.
func ListFolktales(ctx context.Context, gormDB *gorm.DB, opts ListOptions) ([]Folktale, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 12
	}

	query := gormDB.WithContext(ctx).Model(&Folktale{})
	if opts.Region != "" {
		query = query.Where("region = ?", opts.Region)
	}
	if opts.Genre != "" {
		query = query.Where("genre = ?", opts.Genre)
	}
	if opts.AgeGroup != "" {
		query = query.Where("age_group = ?", opts.AgeGroup)
	}
	if opts.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(opts.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count folktales")
	}

	var folktales []Folktale
	err := query.Preload("Ratings").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&folktales).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to list folktales")
	}

	for i := range folktales {
		if folktales[i].Ratings == nil {
			folktales[i].Ratings = []Rating{}
		}
	}
	return folktales, total, nil
}

// PopularFolktales returns the most-viewed folktales.
func PopularFolktales(ctx context.Context, gormDB *gorm.DB, limit int) ([]Folktale, error) {
	var folktales []Folktale
	err := gormDB.WithContext(ctx).Preload("Ratings").
		Order("views DESC").
		Limit(limit).
		Find(&folktales).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to list popular folktales")
	}
	for i := range folktales {
		if folktales[i].Ratings == nil {
			folktales[i].Ratings = []Rating{}
		}
	}
	return folktales, nil
}

// RandomFolktale picks one folktale uniformly at random.
func RandomFolktale(ctx context.Context, gormDB *gorm.DB) (*Folktale, error) {
	var count int64
	if err := gormDB.WithContext(ctx).Model(&Folktale{}).Count(&count).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count folktales")
	}
	if count == 0 {
		return nil, utils.NewError(utils.ErrNotFound.Code, "Folktale not found")
	}

	var f Folktale
	err := gormDB.WithContext(ctx).Preload("Ratings").
		Offset(rand.Intn(int(count))).
		First(&f).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get random folktale")
	}
	if f.Ratings == nil {
		f.Ratings = []Rating{}
	}
	return &f, nil
}

// IncrementViews bumps the view counter atomically.
func IncrementViews(ctx context.Context, gormDB *gorm.DB, id uuid.UUID) error {
	err := gormDB.WithContext(ctx).Model(&Folktale{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to increment views")
	}
	return nil
}

// RateFolktale records a user's rating. Each user rates a folktale once; the
// pre-check yields the friendly message and the unique index backs it up
// under concurrent submissions.
func RateFolktale(ctx context.Context, gormDB *gorm.DB, folktaleID, userID uuid.UUID, value int) (*Folktale, error) {
	if _, err := FolktaleByID(ctx, gormDB, folktaleID); err != nil {
		if appErr, ok := err.(*utils.CustomError); ok && appErr.Code == utils.ErrNotFound.Code {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Legend not found")
		}
		return nil, err
	}

	var existing Rating
	err := gormDB.WithContext(ctx).
		Where("folktale_id = ? AND user_id = ?", folktaleID, userID).
		First(&existing).Error
	if err == nil {
		return nil, utils.NewError(utils.ErrBadRequest.Code, "You have already rated this legend")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check existing rating")
	}

	rating := Rating{FolktaleID: folktaleID, UserID: userID, Value: value}
	if err := gormDB.WithContext(ctx).Create(&rating).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return nil, utils.NewError(utils.ErrBadRequest.Code, "You have already rated this legend")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to save rating")
	}

	return FolktaleByID(ctx, gormDB, folktaleID)
}

// UpdateFolktale persists changes made to a loaded folktale.
func UpdateFolktale(ctx context.Context, gormDB *gorm.DB, f *Folktale) error {
	if err := gormDB.WithContext(ctx).Save(f).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update folktale")
	}
	return nil
}

// DeleteFolktale removes a folktale together with its comments (top-level and
// replies alike), ratings, and bookmarks, in one transaction.
func DeleteFolktale(ctx context.Context, gormDB *gorm.DB, id uuid.UUID) error {
	var f Folktale
	if err := gormDB.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.NewError(utils.ErrNotFound.Code, "Folktale not found")
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get folktale")
	}

	err := gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folktale_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("folktale_id = ?", id).Delete(&Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("folktale_id = ?", id).Delete(&Bookmark{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Folktale{}, "id = ?", id).Error
	})
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete folktale")
	}
	return nil
}
