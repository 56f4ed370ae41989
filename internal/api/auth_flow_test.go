package api_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/legendsansar/legendsansar/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterVerifyLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doForm(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "kanchha",
		"email":    "kanchha@example.com",
		"password": "Password1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Registration successful, verification link sent to email", body["message"])

	// Logging in before verification is refused with the resend hint.
	resp = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "kanchha@example.com", "password": "Password1",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Please verify your email before logging in", body["message"])
	assert.Equal(t, true, body["resendVerification"])

	resp = env.doJSON(t, http.MethodGet, "/api/auth/verify-email/bogus-token", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Invalid or expired verification token", body["message"])

	key := env.redisKeyWithPrefix(t, "verify:")
	token := strings.TrimPrefix(key, "verify:")

	resp = env.doJSON(t, http.MethodGet, "/api/auth/verify-email/"+token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Email verified successfully", body["message"])
	assert.NotEmpty(t, body["token"])
	assert.False(t, env.redis.Exists(key))

	resp = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "kanchha@example.com", "password": "Password1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "kanchha", user["username"])
	assert.Equal(t, true, user["isVerified"])
}

func TestRegisterRejectsDuplicateAndWeakPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "taken", "taken@example.com", "Password1")

	resp := env.doForm(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "other", "email": "taken@example.com", "password": "Password1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "User already exists", body["message"])

	resp = env.doForm(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "weakling", "email": "weak@example.com", "password": "lowercase",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Validation error", body["message"])
	assert.NotEmpty(t, body["errors"])
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "dhana", "dhana@example.com", "Password1")

	resp := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "Password1",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", decodeBody(t, resp)["message"])

	resp = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "dhana@example.com", "password": "WrongPass1",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", decodeBody(t, resp)["message"])
}

func TestResendVerification(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doForm(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "maila", "email": "maila@example.com", "password": "Password1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.doJSON(t, http.MethodPost, "/api/auth/resend-verification", "", map[string]string{
		"email": "maila@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Verification link sent to email", decodeBody(t, resp)["message"])

	env.seedAccount(t, "verified", "verified@example.com", "Password1")
	resp = env.doJSON(t, http.MethodPost, "/api/auth/resend-verification", "", map[string]string{
		"email": "verified@example.com",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email is already verified", decodeBody(t, resp)["message"])
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "resetter", "resetter@example.com", "OldPassword1")

	resp := env.doJSON(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
		"email": "resetter@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OTP sent to email", decodeBody(t, resp)["message"])
	env.redisKeyWithPrefix(t, "otp:")

	// The stored OTP is bcrypt-hashed, so plant a known one for the rest of
	// the flow.
	hashed, err := utils.HashPassword("123456")
	require.NoError(t, err)
	require.NoError(t, env.redis.Set("otp:resetter@example.com", hashed))

	resp = env.doJSON(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"email": "resetter@example.com", "otp": "654321", "newPassword": "NewPassword1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid OTP", decodeBody(t, resp)["message"])

	resp = env.doJSON(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"email": "resetter@example.com", "otp": "123456", "newPassword": "NewPassword1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Password reset successful", decodeBody(t, resp)["message"])

	// Consumed OTPs do not work twice.
	resp = env.doJSON(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"email": "resetter@example.com", "otp": "123456", "newPassword": "ThirdPassword1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Expired OTP", decodeBody(t, resp)["message"])

	resp = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "resetter@example.com", "password": "NewPassword1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "resetter@example.com", "password": "OldPassword1",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestForgotPasswordRequiresVerifiedAccount(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doForm(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "fresh", "email": "fresh@example.com", "password": "Password1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.doJSON(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
		"email": "fresh@example.com",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please verify your email first", decodeBody(t, resp)["message"])
}

func TestMeAndAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedAccount(t, "selfie", "selfie@example.com", "Password1")

	resp := env.doJSON(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "selfie", user["username"])

	resp = env.doJSON(t, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "No token, authorization denied", decodeBody(t, resp)["message"])

	resp = env.doJSON(t, http.MethodGet, "/api/auth/me", "garbage.token.here", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token is not valid", decodeBody(t, resp)["message"])
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedAccount(t, "oldname", "rename@example.com", "Password1")
	env.seedAccount(t, "occupied", "occupied@example.com", "Password1")

	resp := env.doForm(t, http.MethodPut, "/api/auth/update-profile", token, map[string]string{
		"username": "newname",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Profile updated successfully", body["message"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "newname", user["username"])

	resp = env.doForm(t, http.MethodPut, "/api/auth/update-profile", token, map[string]string{
		"username": "occupied",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already taken", decodeBody(t, resp)["message"])
}
