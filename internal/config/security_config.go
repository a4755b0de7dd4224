package config

type SecurityConfig interface {
	GetMaxSessionsPerUser() int
	GetRevealUserNotFound() bool
	GetJWTSigningKey() []byte
	GetJWTIssuer() string
	GetJWTAudience() string
}

type Security struct {
	MaxSessionsPerUser int    `env:"MAX_SESSIONS_PER_USER" envDefault:"0"`
	RevealUserNotFound bool   `env:"REVEAL_USER_NOT_FOUND" envDefault:"false"`
	JWTSigningKey      string `env:"JWT_SIGNING_KEY"`
	JWTIssuer          string `env:"JWT_ISSUER"`
	JWTAudience        string `env:"JWT_AUDIENCE"`
}

var _ SecurityConfig = Security{}

// GetMaxSessionsPerUser returns the concurrent-session limit per
// principal. Zero or negative means unlimited.
func (s Security) GetMaxSessionsPerUser() int {
	return s.MaxSessionsPerUser
}

// GetRevealUserNotFound turns off the anti-enumeration default for the
// password provider.
func (s Security) GetRevealUserNotFound() bool {
	return s.RevealUserNotFound
}

func (s Security) GetJWTSigningKey() []byte {
	if s.JWTSigningKey == "" {
		return nil
	}
	return []byte(s.JWTSigningKey)
}

func (s Security) GetJWTIssuer() string {
	return s.JWTIssuer
}

func (s Security) GetJWTAudience() string {
	return s.JWTAudience
}
