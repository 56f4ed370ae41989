package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/legendsansar/legendsansar/internal/models"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"github.com/microcosm-cc/bluemonday"
)

// contentPolicy strips unsafe markup from admin-submitted folktale content
// while keeping the tags the SPA renders.
var contentPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("h1", "h2", "h3")
	p.AllowImages()
	return p
}()

type adminFolktaleInput struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Region   string `json:"region" validate:"required"`
	Genre    string `json:"genre" validate:"required"`
	AgeGroup string `json:"ageGroup" validate:"required"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
	AudioURL string `json:"audioUrl"`
}

// AdminCreateFolktale creates a folktale from JSON with pre-hosted asset URLs.
func AdminCreateFolktale(c *fiber.Ctx) error {
	var input adminFolktaleInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}

	var opts []models.FolktaleOption
	if input.AudioURL != "" {
		opts = append(opts, models.WithAudioURL(input.AudioURL))
	}

	folktale, err := models.NewFolktale(c.UserContext(), DB,
		input.Title, contentPolicy.Sanitize(input.Content),
		input.Region, input.Genre, input.AgeGroup, input.ImageURL, opts...)
	if err != nil {
		return utils.HandleError(c, err)
	}

	Logger.Info(c.UserContext()).WithMeta(utils.Map{"folktale_id": folktale.ID.String()}).Logs("Folktale created by admin")
	return c.Status(fiber.StatusCreated).JSON(toFolktaleResponse(*folktale))
}

type adminFolktaleUpdate struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Region   *string `json:"region"`
	Genre    *string `json:"genre"`
	AgeGroup *string `json:"ageGroup"`
	ImageURL *string `json:"imageUrl"`
	AudioURL *string `json:"audioUrl"`
}

// AdminUpdateFolktale applies a partial JSON update; omitted fields keep
// their value.
func AdminUpdateFolktale(c *fiber.Ctx) error {
	id, err := parseFolktaleID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}

	var input adminFolktaleUpdate
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}

	folktale, err := models.FolktaleByID(c.UserContext(), DB, id)
	if err != nil {
		return utils.HandleError(c, err)
	}

	if input.Title != nil {
		folktale.Title = *input.Title
	}
	if input.Content != nil {
		folktale.Content = contentPolicy.Sanitize(*input.Content)
	}
	if input.Region != nil {
		folktale.Region = *input.Region
	}
	if input.Genre != nil {
		folktale.Genre = *input.Genre
	}
	if input.AgeGroup != nil {
		folktale.AgeGroup = *input.AgeGroup
	}
	if input.ImageURL != nil {
		folktale.ImageURL = *input.ImageURL
	}
	if input.AudioURL != nil {
		folktale.AudioURL = *input.AudioURL
	}

	// The required fields stay required on update; an explicit empty string
	// is rejected, not written through.
	if err := Validator.Validate(folktale); err != nil {
		return utils.HandleError(c, err)
	}

	if err := models.UpdateFolktale(c.UserContext(), DB, folktale); err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(toFolktaleResponse(*folktale))
}

// AdminDeleteFolktale removes a folktale and everything hanging off it.
func AdminDeleteFolktale(c *fiber.Ctx) error {
	return DeleteFolktale(c)
}

// adminFolktaleOverview is a folktale joined with its full comment threads
// for the curation dashboard.
type adminFolktaleOverview struct {
	folktaleResponse
	Comments []models.CommentView `json:"comments"`
}

// AdminListFolktales returns every folktale with comments and averageRating.
func AdminListFolktales(c *fiber.Ctx) error {
	var folktales []models.Folktale
	err := DB.WithContext(c.UserContext()).Preload("Ratings").
		Order("created_at DESC").
		Find(&folktales).Error
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to list folktales"))
	}

	out := make([]adminFolktaleOverview, 0, len(folktales))
	for _, f := range folktales {
		if f.Ratings == nil {
			f.Ratings = []models.Rating{}
		}
		comments, cerr := models.CommentsForFolktale(c.UserContext(), DB, f.ID)
		if cerr != nil {
			return utils.HandleError(c, cerr)
		}
		out = append(out, adminFolktaleOverview{
			folktaleResponse: toFolktaleResponse(f),
			Comments:         comments,
		})
	}

	return c.JSON(out)
}
