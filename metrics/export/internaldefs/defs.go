// Package internaldefs holds the shared metric name/help tables consumed by
// the Prometheus and OTel exporters. Exported so both exporters render the
// same series; not intended for direct application use.
package internaldefs

import (
	"github.com/otpgate/otpgate"
)

// CounterDef binds an engine counter to its exported series name.
type CounterDef struct {
	ID   otpgate.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine histogram to its exported series name.
type HistogramDef struct {
	ID   otpgate.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: otpgate.MetricSignupSuccess, Name: "otpgate_signup_success_total", Help: "Accepted registrations."},
	{ID: otpgate.MetricSignupDuplicate, Name: "otpgate_signup_duplicate_total", Help: "Registrations rejected for a username or email conflict."},
	{ID: otpgate.MetricSignupVerifySuccess, Name: "otpgate_signup_verify_success_total", Help: "Confirmed signup OTPs."},
	{ID: otpgate.MetricSignupVerifyFailure, Name: "otpgate_signup_verify_failure_total", Help: "Rejected signup OTPs."},
	{ID: otpgate.MetricLoginChallengeIssued, Name: "otpgate_login_challenge_issued_total", Help: "Credential checks that produced a login OTP."},
	{ID: otpgate.MetricLoginFailure, Name: "otpgate_login_failure_total", Help: "Rejected credential checks."},
	{ID: otpgate.MetricLoginVerifySuccess, Name: "otpgate_login_verify_success_total", Help: "Confirmed login OTPs."},
	{ID: otpgate.MetricLoginVerifyFailure, Name: "otpgate_login_verify_failure_total", Help: "Rejected login OTPs."},
	{ID: otpgate.MetricOTPIssued, Name: "otpgate_otp_issued_total", Help: "Stored challenges across all purposes."},
	{ID: otpgate.MetricOTPPendingRejected, Name: "otpgate_otp_pending_rejected_total", Help: "Issuance attempts blocked by a live challenge."},
	{ID: otpgate.MetricOTPVerifySuccess, Name: "otpgate_otp_verify_success_total", Help: "Successful digest verifications."},
	{ID: otpgate.MetricOTPVerifyFailure, Name: "otpgate_otp_verify_failure_total", Help: "Failed digest verifications."},
	{ID: otpgate.MetricOTPExpired, Name: "otpgate_otp_expired_total", Help: "Verification attempts with no stored challenge."},
	{ID: otpgate.MetricResendRequest, Name: "otpgate_resend_request_total", Help: "Accepted OTP re-issuance requests."},
	{ID: otpgate.MetricResendInvalidPurpose, Name: "otpgate_resend_invalid_purpose_total", Help: "Re-issuance requests with an unknown purpose tag."},
	{ID: otpgate.MetricResetStage1, Name: "otpgate_reset_stage1_total", Help: "Issued stage-1 reset progress tokens."},
	{ID: otpgate.MetricResetStage2, Name: "otpgate_reset_stage2_total", Help: "Issued stage-2 reset progress tokens."},
	{ID: otpgate.MetricResetComplete, Name: "otpgate_reset_complete_total", Help: "Persisted password mutations."},
	{ID: otpgate.MetricResetFailure, Name: "otpgate_reset_failure_total", Help: "Failures anywhere in the password-reset flow."},
	{ID: otpgate.MetricFederatedLogin, Name: "otpgate_federated_login_total", Help: "Successful federated provider logins."},
	{ID: otpgate.MetricFederatedUserCreated, Name: "otpgate_federated_user_created_total", Help: "Accounts created from a provider handshake."},
	{ID: otpgate.MetricFederatedFailure, Name: "otpgate_federated_failure_total", Help: "Failed federated provider logins."},
	{ID: otpgate.MetricSessionIssued, Name: "otpgate_session_issued_total", Help: "Minted access/refresh pairs."},
	{ID: otpgate.MetricRefreshSuccess, Name: "otpgate_refresh_success_total", Help: "Access tokens minted from a refresh token."},
	{ID: otpgate.MetricRefreshFailure, Name: "otpgate_refresh_failure_total", Help: "Rejected refresh tokens."},
	{ID: otpgate.MetricNotifyFailure, Name: "otpgate_notify_failure_total", Help: "Failed OTP notifications."},
}

var HistogramDefs = []HistogramDef{
	{ID: otpgate.MetricVerifyLatency, Name: "otpgate_verify_latency_seconds", Help: "Digest verification latency histogram."},
}

// HistogramBounds are the bucket upper bounds as Prometheus le labels.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the same bounds as OTel-safe name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
