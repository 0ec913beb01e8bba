package mailer

import (
	"fmt"
	"html"
)

// WelcomeEmail is sent after a successful registration.
func WelcomeEmail(to, name, appURL string) Message {
	n := html.EscapeString(name)
	return Message{
		To:      to,
		Subject: "Welcome to MindSpace",
		HTMLBody: fmt.Sprintf(`<h1>Welcome to MindSpace, %s!</h1>
<p>Your journaling space is ready. Start your first entry and build a writing streak.</p>
<p><a href="%s/dashboard">Open your dashboard</a></p>`, n, appURL),
		TextBody: fmt.Sprintf("Welcome to MindSpace, %s! Start journaling at %s/dashboard", name, appURL),
	}
}

// PasswordResetEmail carries the single-use reset link. product names the
// app in the subject line.
func PasswordResetEmail(product, to, name, resetURL string) Message {
	n := html.EscapeString(name)
	return Message{
		To:      to,
		Subject: "Reset your " + product + " password",
		HTMLBody: fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your password. The link below expires in 10 minutes.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>`, n, resetURL),
		TextBody: fmt.Sprintf("Hi %s, reset your password within 10 minutes: %s", name, resetURL),
	}
}
