package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"
	ErrCodeAdminRequired          = "admin_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"

	// Account errors
	ErrCodeRegistrationFailed = "registration_failed"
	ErrCodeLoginFailed        = "login_failed"
	ErrCodeRefreshFailed      = "refresh_failed"
	ErrCodeEmailTaken         = "email_taken"

	// Quiz errors
	ErrCodeQuizNotFound        = "quiz_not_found"
	ErrCodeQuizLocked          = "quiz_locked"
	ErrCodeInvalidQuiz         = "invalid_quiz"
	ErrCodeAnswerNotInOptions  = "answer_not_in_options"
	ErrCodeQuizSaveFailed      = "quiz_save_failed"
	ErrCodeNoReviewQuestions   = "no_review_questions"
	ErrCodeSessionNotFound     = "session_not_found"
	ErrCodeSessionBusy         = "session_busy"
	ErrCodeInvalidTransition   = "invalid_transition"
	ErrCodeSessionStartFailed  = "session_start_failed"
	ErrCodeFeedbackSaveFailed  = "feedback_save_failed"
	ErrCodeDashboardFailed     = "dashboard_failed"
	ErrCodeUserNotFound        = "user_not_found"
	ErrCodeUserUpdateFailed    = "user_update_failed"
	ErrCodeContactDeliveryFail = "contact_delivery_failed"

	// Tutor errors
	ErrCodeRateLimited = "rate_limited"
	ErrCodeTutorFailed = "tutor_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"

	// Feature availability
	ErrCodeFeatureNotAvailable = "feature_not_available"

	// OAuth errors
	ErrCodeOAuthNotConfigured  = "oauth_not_configured"
	ErrCodeOAuthStartFailed    = "oauth_start_failed"
	ErrCodeOAuthCallbackFailed = "oauth_callback_failed"
	ErrCodeOAuthMissingCode    = "missing_code"
	ErrCodeOAuthInvalidState   = "invalid_state"
)
