package errs

import "errors"

var (
	ErrChatNotFound      = errors.New("chat not found")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrArticleNotFound   = errors.New("knowledge article not found")
	ErrTemplateNotFound  = errors.New("jira template not found")
	ErrShiftNotFound     = errors.New("shift not found")
	ErrRatingNotFound    = errors.New("rating not found")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Нарушения жизненного цикла чата.
	ErrInvalidTransition  = errors.New("invalid chat status transition")
	ErrOperatorBusy       = errors.New("operator already holds the maximum of active chats")
	ErrInvalidCloseReason = errors.New("invalid close reason")
	ErrNotExpired         = errors.New("deadline has not elapsed yet")
	ErrExtensionUsed      = errors.New("extension already used")

	ErrAccessDenied = errors.New("access denied")
)
