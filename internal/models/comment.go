package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"gorm.io/gorm"
)

// Comment is one entry in a folktale's discussion. Threading is a single
// level deep: a top-level comment has a nil ParentID, a reply points at a
// top-level comment, and a reply can never be a reply target. Only the
// parent reference is stored; reply lists are derived by query at read time,
// so creating a reply touches exactly one row.
type Comment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FolktaleID uuid.UUID  `gorm:"type:uuid;not null;index" json:"folktaleId"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	ParentID   *uuid.UUID `gorm:"type:uuid;index" json:"parentId"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"timestamp"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CommentAuthor is the author projection attached to comment responses.
type CommentAuthor struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	IsAdmin  bool      `json:"isAdmin"`
}

// CommentView is a comment expanded with its author and derived replies.
type CommentView struct {
	ID         uuid.UUID     `json:"id"`
	FolktaleID uuid.UUID     `json:"folktaleId"`
	Content    string        `json:"content"`
	Timestamp  time.Time     `json:"timestamp"`
	ParentID   *uuid.UUID    `json:"parentId"`
	User       CommentAuthor `json:"user"`
	Replies    []CommentView `json:"replies"`
}

func commentView(c Comment) CommentView {
	return CommentView{
		ID:         c.ID,
		FolktaleID: c.FolktaleID,
		Content:    c.Content,
		Timestamp:  c.CreatedAt,
		ParentID:   c.ParentID,
		User: CommentAuthor{
			ID:       c.User.ID,
			Username: c.User.Username,
			IsAdmin:  c.User.IsAdmin,
		},
		Replies: []CommentView{},
	}
}

// CreateComment posts a top-level comment or a reply. Replies to replies are
// rejected, and a parent must belong to the same folktale as the reply.
func CreateComment(ctx context.Context, gormDB *gorm.DB, folktaleID, userID uuid.UUID, content string, parentID *uuid.UUID) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.NewError(utils.ErrBadRequest.Code, "Validation error").
			WithField("content", "Comment content is required")
	}

	if err := gormDB.WithContext(ctx).First(&Folktale{}, "id = ?", folktaleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Folktale not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get folktale")
	}

	if parentID != nil {
		var parent Comment
		err := gormDB.WithContext(ctx).First(&parent, "id = ?", *parentID).Error
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Parent comment not found")
		}
		if err != nil {
			return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get parent comment")
		}
		if parent.FolktaleID != folktaleID {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Parent comment not found")
		}
		if parent.ParentID != nil {
			return nil, utils.NewError(utils.ErrBadRequest.Code, "Replies to replies are not allowed")
		}
	}

	comment := Comment{
		FolktaleID: folktaleID,
		UserID:     userID,
		Content:    content,
		ParentID:   parentID,
	}
	if err := gormDB.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to save comment")
	}

	var saved Comment
	if err := gormDB.WithContext(ctx).Preload("User").First(&saved, "id = ?", comment.ID).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load comment")
	}

	view := commentView(saved)
	return &view, nil
}

// CommentsForFolktale returns the folktale's top-level comments in creation
// order, each expanded with its author and its replies.
func CommentsForFolktale(ctx context.Context, gormDB *gorm.DB, folktaleID uuid.UUID) ([]CommentView, error) {
	var comments []Comment
	err := gormDB.WithContext(ctx).Preload("User").
		Where("folktale_id = ?", folktaleID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to list comments")
	}

	views := make([]CommentView, 0)
	index := make(map[uuid.UUID]int)
	for _, c := range comments {
		if c.ParentID == nil {
			views = append(views, commentView(c))
			index[c.ID] = len(views) - 1
		}
	}
	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			views[i].Replies = append(views[i].Replies, commentView(c))
		}
	}

	return views, nil
}
