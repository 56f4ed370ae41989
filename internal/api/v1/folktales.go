package v1

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/legendsansar/legendsansar/internal/auth"
	"github.com/legendsansar/legendsansar/internal/models"
	"github.com/legendsansar/legendsansar/internal/storage"
	"github.com/legendsansar/legendsansar/pkg/utils"
)

// folktaleResponse is a folktale with its derived averageRating attached.
type folktaleResponse struct {
	models.Folktale
	AverageRating string `json:"averageRating"`
}

func toFolktaleResponse(f models.Folktale) folktaleResponse {
	return folktaleResponse{Folktale: f, AverageRating: f.AverageRating()}
}

func toFolktaleResponses(folktales []models.Folktale) []folktaleResponse {
	out := make([]folktaleResponse, 0, len(folktales))
	for _, f := range folktales {
		out = append(out, toFolktaleResponse(f))
	}
	return out
}

func parseFolktaleID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, utils.NewError(utils.ErrBadRequest.Code, "Invalid folktale ID")
	}
	return id, nil
}

// ListFolktales returns one page of folktales with filters and title search.
func ListFolktales(c *fiber.Ctx) error {
	opts := models.ListOptions{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 12),
		Region:   c.Query("region"),
		Genre:    c.Query("genre"),
		AgeGroup: c.Query("ageGroup"),
		Search:   c.Query("search"),
	}

	folktales, total, err := models.ListFolktales(c.UserContext(), DB, opts)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"folktales": toFolktaleResponses(folktales),
		"total":     total,
	})
}

// PopularFolktales returns the five most-viewed folktales.
func PopularFolktales(c *fiber.Ctx) error {
	folktales, err := models.PopularFolktales(c.UserContext(), DB, 5)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(toFolktaleResponses(folktales))
}

// RandomFolktale returns one folktale chosen uniformly at random.
func RandomFolktale(c *fiber.Ctx) error {
	folktale, err := models.RandomFolktale(c.UserContext(), DB)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(toFolktaleResponse(*folktale))
}

// GetFolktale fetches one folktale, counting the view first so the returned
// count includes this fetch.
func GetFolktale(c *fiber.Ctx) error {
	id, err := parseFolktaleID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}

	if err := models.IncrementViews(c.UserContext(), DB, id); err != nil {
		return utils.HandleError(c, err)
	}

	folktale, err := models.FolktaleByID(c.UserContext(), DB, id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(toFolktaleResponse(*folktale))
}

type generateStoryInput struct {
	Genre    string `json:"genre"`
	Region   string `json:"region"`
	AgeGroup string `json:"ageGroup"`
}

// GenerateStory drafts folktale text through the completion API for the
// admin panel's story assistant.
func GenerateStory(c *fiber.Ctx) error {
	var input generateStoryInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}

	if input.Genre == "" || input.Region == "" || input.AgeGroup == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Genre, region, and age group are required.",
		})
	}

	if Stories == nil {
		return utils.HandleError(c, utils.NewError(utils.ErrInternalServerError.Code, "Story generation is not available"))
	}

	text, err := Stories.GenerateStory(c.UserContext(), input.Genre, input.Region, input.AgeGroup)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{"generatedText": text})
}

type folktaleForm struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Region   string `json:"region" validate:"required"`
	Genre    string `json:"genre" validate:"required"`
	AgeGroup string `json:"ageGroup" validate:"required"`
}

func parseFolktaleForm(c *fiber.Ctx) folktaleForm {
	return folktaleForm{
		Title:    strings.TrimSpace(c.FormValue("title")),
		Content:  c.FormValue("content"),
		Region:   strings.TrimSpace(c.FormValue("region")),
		Genre:    strings.TrimSpace(c.FormValue("genre")),
		AgeGroup: strings.TrimSpace(c.FormValue("ageGroup")),
	}
}

// CreateFolktale creates a folktale from a multipart form. The image file is
// required; audio is optional. Both land in the asset store.
func CreateFolktale(c *fiber.Ctx) error {
	input := parseFolktaleForm(c)
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}

	imageFile, err := c.FormFile("image")
	if err != nil || imageFile == nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Validation error").
			WithField("image", "Image is required"))
	}
	imageURL, err := uploadAsset(c, imageFile, storage.FolderFolktales, storage.ImageContentType, "Only JPG and PNG images are allowed")
	if err != nil {
		return utils.HandleError(c, err)
	}

	var opts []models.FolktaleOption
	if audioFile, aerr := c.FormFile("audio"); aerr == nil && audioFile != nil {
		audioURL, uerr := uploadAsset(c, audioFile, storage.FolderAudio, storage.AudioContentType, "Only MP3 audio is allowed")
		if uerr != nil {
			return utils.HandleError(c, uerr)
		}
		opts = append(opts, models.WithAudioURL(audioURL))
	}

	folktale, err := models.NewFolktale(c.UserContext(), DB, input.Title, input.Content, input.Region, input.Genre, input.AgeGroup, imageURL, opts...)
	if err != nil {
		return utils.HandleError(c, err)
	}

	Logger.Info(c.UserContext()).WithMeta(utils.Map{"folktale_id": folktale.ID.String()}).Logs("Folktale created")
	return c.Status(fiber.StatusCreated).JSON(toFolktaleResponse(*folktale))
}

// UpdateFolktale applies a multipart update; text fields and files are all
// optional, absent ones keep their value.
func UpdateFolktale(c *fiber.Ctx) error {
	id, err := parseFolktaleID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}

	folktale, err := models.FolktaleByID(c.UserContext(), DB, id)
	if err != nil {
		return utils.HandleError(c, err)
	}

	input := parseFolktaleForm(c)
	if input.Title != "" {
		folktale.Title = input.Title
	}
	if input.Content != "" {
		folktale.Content = input.Content
	}
	if input.Region != "" {
		folktale.Region = input.Region
	}
	if input.Genre != "" {
		folktale.Genre = input.Genre
	}
	if input.AgeGroup != "" {
		folktale.AgeGroup = input.AgeGroup
	}

	if imageFile, ferr := c.FormFile("image"); ferr == nil && imageFile != nil {
		imageURL, uerr := uploadAsset(c, imageFile, storage.FolderFolktales, storage.ImageContentType, "Only JPG and PNG images are allowed")
		if uerr != nil {
			return utils.HandleError(c, uerr)
		}
		folktale.ImageURL = imageURL
	}
	if audioFile, ferr := c.FormFile("audio"); ferr == nil && audioFile != nil {
		audioURL, uerr := uploadAsset(c, audioFile, storage.FolderAudio, storage.AudioContentType, "Only MP3 audio is allowed")
		if uerr != nil {
			return utils.HandleError(c, uerr)
		}
		folktale.AudioURL = audioURL
	}

	if err := models.UpdateFolktale(c.UserContext(), DB, folktale); err != nil {
		return utils.HandleError(c, err)
	}
	return c.JSON(toFolktaleResponse(*folktale))
}

// DeleteFolktale removes a folktale with its comments, ratings, and bookmarks.
func DeleteFolktale(c *fiber.Ctx) error {
	id, err := parseFolktaleID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}

	if err := models.DeleteFolktale(c.UserContext(), DB, id); err != nil {
		return utils.HandleError(c, err)
	}

	Logger.Info(c.UserContext()).WithMeta(utils.Map{"folktale_id": id.String()}).Logs("Folktale deleted")
	return c.JSON(fiber.Map{"message": "Folktale and associated comments deleted"})
}

type rateInput struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

// RateFolktale records the authenticated user's 1-5 rating and returns the
// folktale with the refreshed average.
func RateFolktale(c *fiber.Ctx) error {
	id, err := parseFolktaleID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}

	var input rateInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}

	user := auth.CurrentUser(c)
	folktale, err := models.RateFolktale(c.UserContext(), DB, id, user.ID, input.Rating)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(toFolktaleResponse(*folktale))
}
