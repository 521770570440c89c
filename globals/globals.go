package globals

// Context keys
type ContextKey string

const UserEmailKey ContextKey = "email"
