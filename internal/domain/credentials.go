package domain

// Credentials is a resolved username/password pair. Resolution from flags,
// config, or environment happens at the edge; the core only sees the final
// values and never persists them.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}
