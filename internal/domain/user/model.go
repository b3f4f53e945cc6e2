package user

// User is the slice of the account record the arena needs: identity,
// display name and the spendable point balance.
type User struct {
	ID       string
	Username string
	Points   int64
}

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID   string
	Username string
}
