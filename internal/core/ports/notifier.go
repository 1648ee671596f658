package ports

// Notifier delivers messages to account holders. Delivery is best-effort:
// the identity flows log failures but never fail because of them.
type Notifier interface {
	Send(to, subject, body string) error
}

// PasswordHasher is the external one-way hash collaborator.
type PasswordHasher interface {
	Hash(plain string) ([]byte, error)
	Verify(plain string, hash []byte) bool
}
