package domain

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}
