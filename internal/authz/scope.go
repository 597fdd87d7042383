package authz

// Scope identifies the caller for every core operation: who is acting,
// with which role, on behalf of which office. Built by the auth middleware
// from JWT claims and passed explicitly, never read from globals.
type Scope struct {
	UserID   int
	RoleID   int
	OfficeID int64
}

// AllOffices reports whether reads under this scope skip office filtering.
func (s Scope) AllOffices() bool {
	return CrossesTenant(s.RoleID)
}
