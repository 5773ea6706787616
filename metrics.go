package acauth

import internalmetrics "github.com/realmkit/acauth/internal/metrics"

// Counter IDs, re-exported for exporters and embedding applications.
const (
	MetricLoginSuccess                = internalmetrics.MetricLoginSuccess
	MetricLoginFailure                = internalmetrics.MetricLoginFailure
	MetricLoginLocked                 = internalmetrics.MetricLoginLocked
	MetricTOTPRequired                = internalmetrics.MetricTOTPRequired
	MetricTOTPSuccess                 = internalmetrics.MetricTOTPSuccess
	MetricTOTPFailure                 = internalmetrics.MetricTOTPFailure
	MetricRegisterSuccess             = internalmetrics.MetricRegisterSuccess
	MetricRegisterDuplicate           = internalmetrics.MetricRegisterDuplicate
	MetricCaptchaFailed               = internalmetrics.MetricCaptchaFailed
	MetricCaptchaGenerated            = internalmetrics.MetricCaptchaGenerated
	MetricCaptchaSwept                = internalmetrics.MetricCaptchaSwept
	MetricPasswordChangeSuccess       = internalmetrics.MetricPasswordChangeSuccess
	MetricPasswordChangeInvalidOld    = internalmetrics.MetricPasswordChangeInvalidOld
	MetricPasswordResetRequest        = internalmetrics.MetricPasswordResetRequest
	MetricPasswordResetConfirmSuccess = internalmetrics.MetricPasswordResetConfirmSuccess
	MetricPasswordResetConfirmFailure = internalmetrics.MetricPasswordResetConfirmFailure
	MetricEmailVerifySuccess          = internalmetrics.MetricEmailVerifySuccess
	MetricEmailVerifyFailure          = internalmetrics.MetricEmailVerifyFailure
	MetricRateLimitHit                = internalmetrics.MetricRateLimitHit
	MetricMailSent                    = internalmetrics.MetricMailSent
	MetricMailFailed                  = internalmetrics.MetricMailFailed
)
