// Package v1 holds the HTTP handlers for the Legend Sansar API.
package v1

import (
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/legendsansar/legendsansar/internal/db"
	"github.com/legendsansar/legendsansar/internal/storage"
	"github.com/legendsansar/legendsansar/internal/storygen"
	"github.com/legendsansar/legendsansar/pkg/logger"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"gorm.io/gorm"
)

// Shared handler dependencies, wired once at startup via Setup.
var (
	DB        *gorm.DB
	Redis     *db.RedisClient
	Logger    *logger.Logger
	Validator *utils.Validator
	Assets    *storage.AssetStore
	Stories   *storygen.Generator
	EmailCfg  utils.EmailConfig
)

// Redis key prefixes and lifetimes for the ephemeral auth state.
const (
	verifyKeyPrefix = "verify:"
	otpKeyPrefix    = "otp:"

	verifyTokenTTL = 24 * time.Hour
	otpTTL         = 10 * time.Minute
)

// Deps bundles what the handlers need; Redis and Assets may be nil in tests,
// which disables caching and file uploads respectively.
type Deps struct {
	DB       *gorm.DB
	Redis    *db.RedisClient
	Logger   *logger.Logger
	Assets   *storage.AssetStore
	Stories  *storygen.Generator
	EmailCfg utils.EmailConfig
}

// Setup installs the handler dependencies.
func Setup(deps Deps) {
	DB = deps.DB
	Redis = deps.Redis
	Logger = deps.Logger
	Assets = deps.Assets
	Stories = deps.Stories
	EmailCfg = deps.EmailCfg
	Validator = utils.NewValidator()
}

// uploadAsset pushes one multipart file to the asset store after checking its
// content type, returning the public URL.
func uploadAsset(c *fiber.Ctx, fh *multipart.FileHeader, folder string, accept func(string) bool, typeMessage string) (string, error) {
	if Assets == nil {
		return "", utils.NewError(utils.ErrInternalServerError.Code, "File uploads are not available")
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if !accept(contentType) {
		return "", utils.NewError(utils.ErrBadRequest.Code, typeMessage)
	}

	file, err := fh.Open()
	if err != nil {
		return "", utils.WrapError(err, utils.ErrBadRequest.Code, "Failed to read uploaded file")
	}
	defer file.Close()

	return Assets.Upload(c.UserContext(), folder, contentType, file, fh.Size)
}
