package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// PageSessionHeader selects the page-session context a request belongs to.
	PageSessionHeader = "X-Page-Session"
	// UIDKey is the context key for the identity subject id of the caller
	UIDKey = "uid"
	// UserEmailKey is the context key for storing the authenticated user's email
	UserEmailKey = "userEmail"
	// UserNameKey is the context key for the identity provider display name
	UserNameKey = "userName"
	// UserRoleKey is the context key for the profile role, set by role middleware
	UserRoleKey = "userRole"
	// IdentityKey is the context key for the verified identity
	IdentityKey = "identity"
	// ProfileKey is the context key for the loaded profile, set by role middleware
	ProfileKey = "profile"
)
