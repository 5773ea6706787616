// Package internaldefs carries the shared counter definitions used by the
// Prometheus and OTel exporters. It exists so the two exporters cannot
// drift on names or help text.
package internaldefs

import acauth "github.com/realmkit/acauth"

// CounterDef binds a counter ID to its exported name and help text.
type CounterDef struct {
	ID   acauth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: acauth.MetricLoginSuccess, Name: "acauth_login_success_total", Help: "Successful logins."},
	{ID: acauth.MetricLoginFailure, Name: "acauth_login_failure_total", Help: "Failed logins."},
	{ID: acauth.MetricLoginLocked, Name: "acauth_login_locked_total", Help: "Logins rejected because the account is locked."},
	{ID: acauth.MetricTOTPRequired, Name: "acauth_totp_required_total", Help: "Logins that required a second-factor code."},
	{ID: acauth.MetricTOTPSuccess, Name: "acauth_totp_success_total", Help: "Successful TOTP verifications."},
	{ID: acauth.MetricTOTPFailure, Name: "acauth_totp_failure_total", Help: "Failed TOTP verifications."},
	{ID: acauth.MetricRegisterSuccess, Name: "acauth_register_success_total", Help: "Successful registrations."},
	{ID: acauth.MetricRegisterDuplicate, Name: "acauth_register_duplicate_total", Help: "Registrations rejected as duplicate username or email."},
	{ID: acauth.MetricCaptchaFailed, Name: "acauth_captcha_failed_total", Help: "Captcha validations that failed."},
	{ID: acauth.MetricCaptchaGenerated, Name: "acauth_captcha_generated_total", Help: "Generated captcha challenges."},
	{ID: acauth.MetricCaptchaSwept, Name: "acauth_captcha_swept_total", Help: "Expired captcha challenges removed by sweeps."},
	{ID: acauth.MetricPasswordChangeSuccess, Name: "acauth_password_change_success_total", Help: "Successful password changes."},
	{ID: acauth.MetricPasswordChangeInvalidOld, Name: "acauth_password_change_invalid_old_total", Help: "Password changes with a wrong current password."},
	{ID: acauth.MetricPasswordResetRequest, Name: "acauth_password_reset_request_total", Help: "Password reset requests."},
	{ID: acauth.MetricPasswordResetConfirmSuccess, Name: "acauth_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: acauth.MetricPasswordResetConfirmFailure, Name: "acauth_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
	{ID: acauth.MetricEmailVerifySuccess, Name: "acauth_email_verify_success_total", Help: "Successful email verifications."},
	{ID: acauth.MetricEmailVerifyFailure, Name: "acauth_email_verify_failure_total", Help: "Failed email verifications."},
	{ID: acauth.MetricRateLimitHit, Name: "acauth_rate_limit_hit_total", Help: "Requests denied by the rate limiter."},
	{ID: acauth.MetricMailSent, Name: "acauth_mail_sent_total", Help: "Outbound mails delivered to the sender."},
	{ID: acauth.MetricMailFailed, Name: "acauth_mail_failed_total", Help: "Outbound mail deliveries that failed."},
}
