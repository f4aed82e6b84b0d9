package response

// Business status codes.
const (
	CodeSuccess = 0
	CodeError   = 1

	// user / account errors 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// follow errors 200xx
	ErrFollowSelf       = 20001
	ErrFollowNotFound   = 20002
	ErrFollowNotPending = 20003

	// post / comment / reaction errors 300xx
	ErrPostNotFound     = 30001
	ErrCommentNotFound  = 30002
	ErrContentRejected  = 30003
	ErrContentTooLong   = 30004
	ErrAlreadySaved     = 30005

	// group errors 400xx
	ErrGroupNotFound    = 40001
	ErrNotGroupMember   = 40002
	ErrAlreadyMember    = 40003
	ErrRequestNotFound  = 40004
	ErrRequestDuplicate = 40005

	// system errors 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
