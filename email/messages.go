package email

import "fmt"

// VerificationMessage builds the account-verification mail. urlBase is the
// frontend page that accepts the token as a query parameter.
func VerificationMessage(urlBase, token string) (subject, body string) {
	subject = "Verify your account email"
	link := urlBase + "?token=" + token
	body = fmt.Sprintf(
		"Welcome!\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nIf you did not create an account, ignore this message.\n",
		link,
	)
	return subject, body
}

// ResetMessage builds the password-reset mail.
func ResetMessage(urlBase, token string) (subject, body string) {
	subject = "Password reset request"
	link := urlBase + "?token=" + token
	body = fmt.Sprintf(
		"A password reset was requested for your account.\n\nOpen the link below to choose a new password:\n\n%s\n\nIf you did not request a reset, ignore this message and your password will stay unchanged.\n",
		link,
	)
	return subject, body
}
