package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyContext = "USER_CONTEXT"
	KeyUserID  = "user_id"
	KeyIsAdmin = "isAdmin"
)

// HeaderUserID carries the caller's identity as asserted by the upstream
// auth proxy.
const HeaderUserID = "X-User-ID"

// HeaderUserSignature carries the hex HMAC-SHA256 of HeaderUserID keyed
// with the proxy secret. Unsigned identity headers are ignored.
const HeaderUserSignature = "X-User-Signature"
