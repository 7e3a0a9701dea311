package otpgate

import (
	internalmetrics "github.com/otpgate/otpgate/internal/metrics"
)

const (
	// MetricSignupSuccess counts accepted registrations.
	MetricSignupSuccess = internalmetrics.MetricSignupSuccess
	// MetricSignupDuplicate counts username/email conflicts at signup.
	MetricSignupDuplicate = internalmetrics.MetricSignupDuplicate
	// MetricSignupVerifySuccess counts confirmed signup OTPs.
	MetricSignupVerifySuccess = internalmetrics.MetricSignupVerifySuccess
	// MetricSignupVerifyFailure counts rejected signup OTPs.
	MetricSignupVerifyFailure = internalmetrics.MetricSignupVerifyFailure
	// MetricLoginChallengeIssued counts credential checks that produced a
	// login OTP.
	MetricLoginChallengeIssued = internalmetrics.MetricLoginChallengeIssued
	// MetricLoginFailure counts rejected credential checks.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginVerifySuccess counts confirmed login OTPs.
	MetricLoginVerifySuccess = internalmetrics.MetricLoginVerifySuccess
	// MetricLoginVerifyFailure counts rejected login OTPs.
	MetricLoginVerifyFailure = internalmetrics.MetricLoginVerifyFailure
	// MetricOTPIssued counts stored challenges across all purposes.
	MetricOTPIssued = internalmetrics.MetricOTPIssued
	// MetricOTPPendingRejected counts issuance attempts blocked by a live
	// challenge.
	MetricOTPPendingRejected = internalmetrics.MetricOTPPendingRejected
	// MetricOTPVerifySuccess counts successful digest verifications.
	MetricOTPVerifySuccess = internalmetrics.MetricOTPVerifySuccess
	// MetricOTPVerifyFailure counts failed digest verifications.
	MetricOTPVerifyFailure = internalmetrics.MetricOTPVerifyFailure
	// MetricOTPExpired counts verify attempts with no stored challenge.
	MetricOTPExpired = internalmetrics.MetricOTPExpired
	// MetricResendRequest counts accepted re-issuance requests.
	MetricResendRequest = internalmetrics.MetricResendRequest
	// MetricResendInvalidPurpose counts re-issuance requests with an
	// unknown purpose tag.
	MetricResendInvalidPurpose = internalmetrics.MetricResendInvalidPurpose
	// MetricResetStage1 counts issued stage-1 progress tokens.
	MetricResetStage1 = internalmetrics.MetricResetStage1
	// MetricResetStage2 counts issued stage-2 progress tokens.
	MetricResetStage2 = internalmetrics.MetricResetStage2
	// MetricResetComplete counts persisted password mutations.
	MetricResetComplete = internalmetrics.MetricResetComplete
	// MetricResetFailure counts failures anywhere in the reset flow.
	MetricResetFailure = internalmetrics.MetricResetFailure
	// MetricFederatedLogin counts successful provider logins.
	MetricFederatedLogin = internalmetrics.MetricFederatedLogin
	// MetricFederatedUserCreated counts identities created pre-verified by
	// a provider handshake.
	MetricFederatedUserCreated = internalmetrics.MetricFederatedUserCreated
	// MetricFederatedFailure counts failed provider logins.
	MetricFederatedFailure = internalmetrics.MetricFederatedFailure
	// MetricSessionIssued counts minted access/refresh pairs.
	MetricSessionIssued = internalmetrics.MetricSessionIssued
	// MetricRefreshSuccess counts access tokens minted from a refresh token.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh tokens.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricNotifyFailure counts failed OTP notifications, awaited or not.
	MetricNotifyFailure = internalmetrics.MetricNotifyFailure
	// MetricVerifyLatency is the digest-verification latency histogram.
	MetricVerifyLatency = internalmetrics.MetricVerifyLatency

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
