package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/legendsansar/legendsansar/internal/db"
	"github.com/legendsansar/legendsansar/internal/models"
	"github.com/legendsansar/legendsansar/pkg/logger"
	"gorm.io/gorm"
)

// Locals keys set by the middleware.
const (
	UserKey   = "user"
	UserIDKey = "user_id"
)

// Options carries the dependencies the middleware resolves users with.
// Redis may be nil; the user lookup then goes straight to the database.
type Options struct {
	DB     *gorm.DB
	Redis  *db.RedisClient
	Logger *logger.Logger
}

// Auth resolves the Authorization bearer token to a user and stores it in
// the request locals.
func Auth(opt Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No token, authorization denied",
			})
		}

		claims, err := VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if opt.Logger != nil {
				opt.Logger.Warn(c.UserContext()).WithFields(err).Logs("Rejected bearer token: %v")
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Token is not valid",
			})
		}

		user, err := models.CachedUserByID(c.UserContext(), opt.Redis, opt.DB, claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Token is not valid",
			})
		}

		c.Locals(UserKey, user)
		c.Locals(UserIDKey, user.ID.String())
		return c.Next()
	}
}

// AdminAuth requires the admin flag on the user resolved by Auth; register
// it after Auth in the chain.
func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(UserKey).(*models.User)
		if !ok || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user set by Auth.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}
