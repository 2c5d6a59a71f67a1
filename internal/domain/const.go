package domain

// Request-context keys set by the auth middleware.
const (
	RequesterIDCtxKey   = "ib-requesterId"
	RequesterNameCtxKey = "ib-requesterName"
)

// ChangesChannel is the redis pub/sub channel carrying idea change events.
const ChangesChannel = "ideaboard:changes"

// IdeaListCacheKey is the memcached key holding the serialized full idea
// list. Invalidated on every mutation.
const IdeaListCacheKey = "ideaboard:ideas:all"
