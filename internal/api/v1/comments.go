package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/legendsansar/legendsansar/internal/auth"
	"github.com/legendsansar/legendsansar/internal/models"
	"github.com/legendsansar/legendsansar/pkg/utils"
)

type commentInput struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

// CreateComment posts a comment or a single-level reply on a folktale.
func CreateComment(c *fiber.Ctx) error {
	folktaleID, err := parseFolktaleID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}

	var input commentInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}

	var parentID *uuid.UUID
	if input.ParentID != nil && *input.ParentID != "" {
		parsed, perr := uuid.Parse(*input.ParentID)
		if perr != nil {
			return utils.HandleError(c, utils.NewError(utils.ErrNotFound.Code, "Parent comment not found"))
		}
		parentID = &parsed
	}

	user := auth.CurrentUser(c)
	comment, err := models.CreateComment(c.UserContext(), DB, folktaleID, user.ID, input.Content, parentID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments returns the folktale's top-level comments with their replies.
func ListComments(c *fiber.Ctx) error {
	folktaleID, err := parseFolktaleID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}

	comments, err := models.CommentsForFolktale(c.UserContext(), DB, folktaleID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(comments)
}
