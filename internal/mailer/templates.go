package mailer

import (
	"fmt"
	"time"
)

func verificationHTML(link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Verify Your Email - ShareIT</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px; background-color: #ffffff;">
    <div style="background-color: #FFD700; padding: 20px; text-align: center; border-radius: 5px 5px 0 0;">
      <h1>Welcome to ShareIT!</h1>
    </div>
    <div style="padding: 30px 20px;">
      <h2>Verify Your Email Address</h2>
      <p>Thank you for signing up! Please verify your email address to access all features of ShareIT.</p>
      <div style="text-align: center;">
        <a href="%[1]s" style="display: inline-block; padding: 12px 24px; background-color: #FFD700; color: #333333; text-decoration: none; border-radius: 5px; font-weight: bold;">Verify Email Address</a>
      </div>
      <p>If the button above doesn't work, you can copy and paste this link into your browser:</p>
      <p style="word-break: break-all; font-size: 12px; color: #666666;">%[1]s</p>
      <p>This verification link will expire in 24 hours.</p>
    </div>
    <div style="text-align: center; padding: 20px; font-size: 12px; color: #666666;">
      <p>&copy; %[2]d ShareIT. All rights reserved.</p>
      <p>This email was sent to you because you registered for a ShareIT account.</p>
    </div>
  </div>
</body>
</html>`, link, time.Now().Year())
}

func passwordResetHTML(link string) string {
	return fmt.Sprintf(`<p>You requested a password reset for your account.</p>
<p>Click this link to reset your password:</p>
<a href="%[1]s">%[1]s</a>
<p>This link will expire in 1 hour.</p>
<p>If you didn't request this, please ignore this email.</p>`, link)
}
