package v1

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/legendsansar/legendsansar/internal/auth"
	"github.com/legendsansar/legendsansar/internal/models"
	"github.com/legendsansar/legendsansar/internal/storage"
	"github.com/legendsansar/legendsansar/pkg/utils"
	"github.com/redis/go-redis/v9"
)

type registerInput struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
}

// Register creates an unverified account from a multipart form and emails a
// verification link. An optional profileImage file is uploaded to the asset
// store.
func Register(c *fiber.Ctx) error {
	input := registerInput{
		Username: strings.TrimSpace(c.FormValue("username")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Password: c.FormValue("password"),
	}
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}

	var opts []models.UserOption
	if fh, err := c.FormFile("profileImage"); err == nil && fh != nil {
		url, uerr := uploadAsset(c, fh, storage.FolderUserProfiles, storage.ImageContentType, "Only JPG and PNG images are allowed")
		if uerr != nil {
			return utils.HandleError(c, uerr)
		}
		opts = append(opts, models.WithProfileImageURL(url))
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to hash password"))
	}

	user, err := models.NewUser(c.UserContext(), DB, input.Username, input.Email, hashed, opts...)
	if err != nil {
		return utils.HandleError(c, err)
	}

	if err := issueVerificationToken(c.UserContext(), user); err != nil {
		return utils.HandleError(c, err)
	}

	Logger.Info(c.UserContext()).WithMeta(utils.Map{"user_id": user.ID.String()}).Logs("User registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful, verification link sent to email",
	})
}

// issueVerificationToken stores a fresh verification token in Redis and mails
// the link. The send happens off the request path; a delivery failure is
// logged, and the user can always hit resend-verification.
func issueVerificationToken(ctx context.Context, user *models.User) error {
	if Redis == nil {
		return utils.NewError(utils.ErrInternalServerError.Code, "Verification is not available")
	}

	token, err := utils.GenerateRandomToken(32)
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate verification token")
	}

	if err := Redis.Set(ctx, verifyKeyPrefix+token, user.ID.String(), verifyTokenTTL).Err(); err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to store verification token")
	}

	email, username := user.Email, user.Username
	go utils.SendVerificationEmail(context.Background(), EmailCfg, email, username, token, Logger)
	return nil
}

// VerifyEmail consumes a verification token, marks the account verified, and
// signs the user in.
func VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")
	if Redis == nil {
		return utils.HandleError(c, utils.NewError(utils.ErrInternalServerError.Code, "Verification is not available"))
	}

	userID, err := Redis.Get(c.UserContext(), verifyKeyPrefix+token).Result()
	if err == redis.Nil || userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid or expired verification token",
		})
	}
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to read verification token"))
	}

	user, err := models.UserBy(c.UserContext(), DB, "id = ?", userID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	user.IsVerified = true
	if err := models.SaveUser(c.UserContext(), Redis, DB, user); err != nil {
		return utils.HandleError(c, err)
	}
	Redis.Del(c.UserContext(), verifyKeyPrefix+token)

	jwt, err := auth.GenerateToken(user.ID.String())
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate token"))
	}

	Logger.Info(c.UserContext()).WithMeta(utils.Map{"user_id": user.ID.String()}).Logs("Email verified")
	return c.JSON(fiber.Map{
		"message": "Email verified successfully",
		"token":   jwt,
		"user":    user,
	})
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResendVerification issues a fresh verification link for an unverified
// account.
func ResendVerification(c *fiber.Ctx) error {
	var input emailInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}

	user, err := models.UserBy(c.UserContext(), DB, "email = ?", strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return utils.HandleError(c, err)
	}
	if user.IsVerified {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email is already verified",
		})
	}

	if err := issueVerificationToken(c.UserContext(), user); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Verification link sent to email"})
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks credentials and returns a bearer token with the profile.
// Unverified accounts get a 403 carrying the resendVerification flag so the
// SPA can offer the resend action.
func Login(c *fiber.Ctx) error {
	var input loginInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}

	user, err := models.UserBy(c.UserContext(), DB, "email = ?", strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return utils.HandleError(c, err)
	}

	if !user.IsVerified {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":            "Please verify your email before logging in",
			"resendVerification": true,
		})
	}

	if err := utils.ComparePasswords(user.Password, input.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	jwt, err := auth.GenerateToken(user.ID.String())
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate token"))
	}

	Logger.Info(c.UserContext()).WithMeta(utils.Map{"user_id": user.ID.String()}).Logs("User logged in")
	return c.JSON(fiber.Map{
		"token": jwt,
		"user":  user,
	})
}

// ForgotPassword emails a 6-digit reset OTP, stored bcrypt-hashed in Redis
// for ten minutes.
func ForgotPassword(c *fiber.Ctx) error {
	var input emailInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := models.UserBy(c.UserContext(), DB, "email = ?", email)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if !user.IsVerified {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please verify your email first",
		})
	}
	if Redis == nil {
		return utils.HandleError(c, utils.NewError(utils.ErrInternalServerError.Code, "Password reset is not available"))
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate OTP"))
	}
	hashedOTP, err := utils.HashPassword(otp)
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to hash OTP"))
	}
	if err := Redis.Set(c.UserContext(), otpKeyPrefix+email, hashedOTP, otpTTL).Err(); err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to store OTP"))
	}

	go utils.SendPasswordResetEmail(context.Background(), EmailCfg, email, otp, Logger)

	return c.JSON(fiber.Map{"message": "OTP sent to email"})
}

type resetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=8,password"`
}

// ResetPassword consumes the OTP and installs a new password.
func ResetPassword(c *fiber.Ctx) error {
	var input resetPasswordInput
	if err := utils.StrictBodyParser(c, &input); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request body"))
	}
	if err := Validator.Validate(input); err != nil {
		return utils.HandleError(c, err)
	}
	if Redis == nil {
		return utils.HandleError(c, utils.NewError(utils.ErrInternalServerError.Code, "Password reset is not available"))
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := models.UserBy(c.UserContext(), DB, "email = ?", email)
	if err != nil {
		return utils.HandleError(c, err)
	}

	hashedOTP, err := Redis.Get(c.UserContext(), otpKeyPrefix+email).Result()
	if err == redis.Nil || hashedOTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Expired OTP"})
	}
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to read OTP"))
	}
	if err := utils.ComparePasswords(hashedOTP, input.OTP); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid OTP"})
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to hash password"))
	}
	user.Password = hashed
	if err := models.SaveUser(c.UserContext(), Redis, DB, user); err != nil {
		return utils.HandleError(c, err)
	}
	Redis.Del(c.UserContext(), otpKeyPrefix+email)

	Logger.Info(c.UserContext()).WithMeta(utils.Map{"user_id": user.ID.String()}).Logs("Password reset")
	return c.JSON(fiber.Map{"message": "Password reset successful"})
}

// UpdateProfile changes username, password, or profile image for the
// authenticated user. All fields are optional; the Redis user cache is
// refreshed on save.
func UpdateProfile(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)

	if username := strings.TrimSpace(c.FormValue("username")); username != "" {
		if len(username) < 3 {
			return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Validation error").
				WithField("username", "username must be at least 3 characters long"))
		}
		user.Username = username
	}

	if password := c.FormValue("password"); password != "" {
		check := struct {
			Password string `json:"password" validate:"min=8,password"`
		}{Password: password}
		if err := Validator.Validate(check); err != nil {
			return utils.HandleError(c, err)
		}
		hashed, err := utils.HashPassword(password)
		if err != nil {
			return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to hash password"))
		}
		user.Password = hashed
	}

	if fh, err := c.FormFile("profileImage"); err == nil && fh != nil {
		url, uerr := uploadAsset(c, fh, storage.FolderUserProfiles, storage.ImageContentType, "Only JPG and PNG images are allowed")
		if uerr != nil {
			return utils.HandleError(c, uerr)
		}
		user.ProfileImageURL = url
	}

	if err := models.SaveUser(c.UserContext(), Redis, DB, user); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// Me returns the authenticated user's profile.
func Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": auth.CurrentUser(c)})
}
