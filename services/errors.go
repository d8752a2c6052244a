package services

import "errors"

// Sentinel errors returned by the service layer. Controllers map these to
// HTTP status codes. Precondition failures (missing lesson, unpublished
// course, no enrollment) all collapse into ErrNotFound so callers cannot
// probe for unpublished content.
var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this course")
	ErrInvalidPercentage = errors.New("progress percentage must be between 0 and 100")
	ErrOrderIndexTaken   = errors.New("a lesson with this order index already exists")
)
