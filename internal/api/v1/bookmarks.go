package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/legendsansar/legendsansar/internal/auth"
	"github.com/legendsansar/legendsansar/internal/models"
	"github.com/legendsansar/legendsansar/pkg/utils"
)

type bookmarkInput struct {
	FolktaleID string `json:"folktaleId" validate:"required"`
}

// AddBookmark saves a folktale to the authenticated user's bookmarks.
func AddBookmark(c *fiber.Ctx) error {
	var input bookmarkInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}

	folktaleID, err := uuid.Parse(input.FolktaleID)
	if err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrNotFound.Code, "Folktale not found"))
	}

	user := auth.CurrentUser(c)
	bookmark, berr := models.AddBookmark(c.UserContext(), DB, user.ID, folktaleID)
	if berr != nil {
		return utils.HandleError(c, berr)
	}

	return c.Status(fiber.StatusCreated).JSON(bookmark)
}

// ListBookmarks returns the authenticated user's bookmarks with folktale
// summaries.
func ListBookmarks(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	bookmarks, err := models.BookmarksForUser(c.UserContext(), DB, user.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(bookmarks)
}

// RemoveBookmark drops the authenticated user's bookmark for a folktale.
func RemoveBookmark(c *fiber.Ctx) error {
	folktaleID, err := uuid.Parse(c.Params("folktaleId"))
	if err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrNotFound.Code, "Bookmark not found"))
	}

	user := auth.CurrentUser(c)
	if err := models.RemoveBookmark(c.UserContext(), DB, user.ID, folktaleID); err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bookmark removed"})
}
