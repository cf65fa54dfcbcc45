package mailer

import (
	"fmt"
	"html"
)

func layout(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
		.content { padding: 40px 30px; color: #1F2937; line-height: 1.6; }
		.btn { display: inline-block; padding: 12px 24px; background-color: #2563EB; color: #FFFFFF; text-decoration: none; border-radius: 4px; }
	</style>
</head>
<body>
	<div class="container">
		<div class="content">
			<h1>%s</h1>
			%s
		</div>
	</div>
</body>
</html>`, html.EscapeString(title), body)
}

// PasswordResetEmail builds the reset mail carrying the one-time link.
func PasswordResetEmail(to, resetURL string) Message {
	link := html.EscapeString(resetURL)
	body := fmt.Sprintf(`
			<p>You requested a password reset</p>
			<p>Please click on the following link to reset your password:</p>
			<p><a class="btn" href="%s" clicktracking=off>%s</a></p>
			<p>If you did not request this, please ignore this email.</p>`, link, link)

	return Message{
		To:      []string{to},
		Subject: "Password Reset Request",
		HTML:    layout("Password Reset Request", body),
	}
}
