// Package api assembles the fiber application: global middleware, route
// table, and handler wiring.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/legendsansar/legendsansar/internal/api/v1"
	"github.com/legendsansar/legendsansar/internal/auth"
	"github.com/legendsansar/legendsansar/internal/config"
	"github.com/legendsansar/legendsansar/internal/db"
	"github.com/legendsansar/legendsansar/internal/storage"
	"github.com/legendsansar/legendsansar/internal/storygen"
	"github.com/legendsansar/legendsansar/pkg/logger"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"gorm.io/gorm"
)

// Deps is everything the application needs wired up. Redis and Assets may be
// nil; the affected features then report themselves unavailable.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger
	DB      *gorm.DB
	Redis   *db.RedisClient
	Assets  *storage.AssetStore
	Stories *storygen.Generator
}

// New builds the fiber app with the global middleware stack and all routes
// registered.
func New(deps Deps) *fiber.App {
	v1.Setup(v1.Deps{
		DB:       deps.DB,
		Redis:    deps.Redis,
		Logger:   deps.Logger,
		Assets:   deps.Assets,
		Stories:  deps.Stories,
		EmailCfg: utils.EmailConfig{
			SMTPHost:     deps.Config.SMTPHost,
			SMTPPort:     deps.Config.SMTPPort,
			SMTPUsername: deps.Config.SMTPUsername,
			SMTPPassword: deps.Config.SMTPPassword,
			ClientURL:    deps.Config.ClientURL,
			FromEmail:    deps.Config.EmailFrom,
		},
	})

	app := fiber.New(fiber.Config{
		AppName:      "Legend Sansar API",
		BodyLimit:    storage.MaxUploadSize + 1024*1024,
		ServerHeader: "legendsansar",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(compress.New())
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
	}))
	app.Use(deps.Logger.Middleware())
	app.Use(logger.SetupLogger(deps.Logger))

	registerRoutes(app, deps)
	return app
}

func registerRoutes(app *fiber.App, deps Deps) {
	authed := auth.Auth(auth.Options{
		DB:     deps.DB,
		Redis:  deps.Redis,
		Logger: deps.Logger,
	})

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", v1.Register)
	authGroup.Get("/verify-email/:token", v1.VerifyEmail)
	authGroup.Post("/resend-verification", v1.ResendVerification)
	authGroup.Post("/login", v1.Login)
	authGroup.Post("/forgot-password", v1.ForgotPassword)
	authGroup.Post("/reset-password", v1.ResetPassword)
	authGroup.Put("/update-profile", authed, v1.UpdateProfile)
	authGroup.Get("/me", authed, v1.Me)

	// Static segments register before the :id catch-all.
	folk := api.Group("/folktales")
	folk.Post("/generate-story", authed, v1.GenerateStory)
	folk.Get("/popular", v1.PopularFolktales)
	folk.Get("/random", v1.RandomFolktale)
	folk.Get("/bookmark", authed, v1.ListBookmarks)
	folk.Post("/bookmarks", authed, v1.AddBookmark)
	folk.Delete("/bookmarks/:folktaleId", authed, v1.RemoveBookmark)
	folk.Get("/", v1.ListFolktales)
	folk.Post("/", authed, v1.CreateFolktale)
	folk.Get("/:id", v1.GetFolktale)
	folk.Put("/:id", authed, v1.UpdateFolktale)
	folk.Delete("/:id", authed, v1.DeleteFolktale)
	folk.Post("/:id/rate", authed, v1.RateFolktale)
	folk.Post("/:id/comments", authed, v1.CreateComment)
	folk.Get("/:id/comments", v1.ListComments)

	admin := api.Group("/admin", authed, auth.AdminAuth())
	admin.Get("/folktales", v1.AdminListFolktales)
	admin.Post("/folktales", v1.AdminCreateFolktale)
	admin.Put("/folktales/:id", v1.AdminUpdateFolktale)
	admin.Delete("/folktales/:id", v1.AdminDeleteFolktale)
}
