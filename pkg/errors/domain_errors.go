package errors

// Domain errors shared by repositories, handlers and feeds.
var (
	ErrInvalidNumber      = Invalid("number must contain digits only")
	ErrSelfChat           = Invalid("cannot start a chat with yourself")
	ErrChatExists         = AlreadyExists("chat already exists")
	ErrNumberTaken        = AlreadyExists("user with this number already exists")
	ErrEmailTaken         = AlreadyExists("user with this email already exists")
	ErrUserNotFound       = NotFound("user not found")
	ErrChatNotFound       = NotFound("chat not found")
	ErrInvalidCredentials = Unauthenticated("invalid email or password")
	ErrInvalidToken       = Unauthenticated("invalid or expired token")
	ErrNotParticipant     = Forbidden("not a chat participant")
)
