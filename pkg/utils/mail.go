package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/legendsansar/legendsansar/pkg/logger"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP and app settings, passed in from app config.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	ClientURL    string
	FromEmail    string
}

// SendVerificationEmail sends the email-verification link issued at
// registration (and on resend).
func SendVerificationEmail(ctx context.Context, config EmailConfig, email, username, token string, log *logger.Logger) error {
	verificationURL := fmt.Sprintf("%s/verify-email/%s", config.ClientURL, token)

	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #eee; border-radius: 10px; background-color: #f9f9f9;">
  <h2 style="color: #333;">Welcome to Legend Sansar!</h2>
  <p style="font-size: 16px; color: #555;">
    Hello %s, thank you for registering. Please click the button below to verify your email address.
  </p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #2c3e50; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; font-weight: bold;">
      Verify Email
    </a>
  </div>
  <p style="font-size: 14px; color: #888;">
    If the button doesn't work, copy and paste this link into your browser:<br>
    <a href="%s" style="color: #2c3e50;">%s</a>
  </p>
  <p style="font-size: 14px; color: #888;">If you didn't request this, you can ignore this email.</p>
  <hr style="margin-top: 40px;">
  <p style="font-size: 12px; color: #aaa; text-align: center;">&copy; %d Legend Sansar. All rights reserved.</p>
</div>
`, username, verificationURL, verificationURL, verificationURL, time.Now().Year())

	textBody := fmt.Sprintf(`Hello %s,

Welcome to Legend Sansar! Verify your email address here: %s

If you didn't request this, you can ignore this email.
`, username, verificationURL)

	return send(ctx, config, email, "Verify Your Email Address", htmlBody, textBody, log)
}

// SendPasswordResetEmail sends the 6-digit reset OTP, valid for ten minutes.
func SendPasswordResetEmail(ctx context.Context, config EmailConfig, email, otp string, log *logger.Logger) error {
	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #eee; border-radius: 10px; background-color: #f9f9f9;">
  <h2 style="color: #333;">Password Reset Request</h2>
  <p style="font-size: 16px; color: #555;">
    You requested a password reset. Please use the OTP below to reset your password. This OTP is valid for <strong>10 minutes</strong>.
  </p>
  <div style="text-align: center; margin: 30px 0;">
    <span style="font-size: 30px; font-weight: bold; color: #2c3e50; letter-spacing: 5px;">%s</span>
  </div>
  <p style="font-size: 14px; color: #888;">If you didn't request this, you can ignore this email.</p>
  <hr style="margin-top: 40px;">
  <p style="font-size: 12px; color: #aaa; text-align: center;">&copy; %d Legend Sansar. All rights reserved.</p>
</div>
`, otp, time.Now().Year())

	textBody := fmt.Sprintf(`You requested a password reset.

Your OTP is: %s (valid for 10 minutes)

If you didn't request this, you can ignore this email.
`, otp)

	return send(ctx, config, email, "Password Reset OTP", htmlBody, textBody, log)
}

func send(ctx context.Context, config EmailConfig, to, subject, htmlBody, textBody string, log *logger.Logger) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", config.FromEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Warn(ctx).WithMeta(Map{"email": to, "subject": subject}).Logs(fmt.Sprintf("Failed to send email: %v", err))
		return WrapError(err, ErrInternalServerError.Code, "Failed to send email")
	}

	log.Info(ctx).WithMeta(Map{"email": to, "subject": subject}).Logs("Email sent")
	return nil
}
