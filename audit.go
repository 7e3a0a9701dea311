package otpgate

import (
	"context"
	"time"
)

// Audit event types emitted by the engine. Sinks key dashboards and alerts
// off these strings, so they are part of the public surface.
const (
	AuditEventSignup        = "signup"
	AuditEventSignupVerify  = "signup_verify"
	AuditEventLogin         = "login"
	AuditEventLoginVerify   = "login_verify"
	AuditEventResend        = "otp_resend"
	AuditEventResetStart    = "reset_start"
	AuditEventResetVerify   = "reset_verify"
	AuditEventResetComplete = "reset_complete"
	AuditEventFederated     = "federated_login"
	AuditEventRefresh       = "session_refresh"
	AuditEventNotify        = "otp_notify"
)

func (e *Engine) emitAudit(ctx context.Context, eventType string, flow Purpose, email, userID string, err error) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Flow:      string(flow),
		Email:     email,
		UserID:    userID,
		Success:   err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	e.audit.Emit(ctx, event)
}
