package config

// OAuthConfig describes the single client registration the demo server
// is configured with. Multi-registration deployments load their
// registrations from storage instead.
type OAuthConfig interface {
	GetRegistrationID() string
	GetClientID() string
	GetClientSecret() string
	GetClientAuthMethod() string
	GetScopes() []string
	GetAuthorizationURI() string
	GetTokenURI() string
	GetUserInfoURI() string
	GetUserNameAttribute() string
	GetJWKSetURI() string
	GetIssuerURI() string
	GetRedirectURI() string
}

type OAuth struct {
	RegistrationID   string   `env:"OAUTH_REGISTRATION_ID" envDefault:"default"`
	ClientID         string   `env:"OAUTH_CLIENT_ID"`
	ClientSecret     string   `env:"OAUTH_CLIENT_SECRET"`
	ClientAuthMethod string   `env:"OAUTH_CLIENT_AUTH_METHOD" envDefault:"client_secret_basic"`
	Scopes           []string `env:"OAUTH_SCOPES" envSeparator:"," envDefault:"openid,profile,email"`
	AuthorizationURI string   `env:"OAUTH_AUTHORIZATION_URI"`
	TokenURI         string   `env:"OAUTH_TOKEN_URI"`
	UserInfoURI      string   `env:"OAUTH_USERINFO_URI"`
	UserNameAttr     string   `env:"OAUTH_USERNAME_ATTRIBUTE" envDefault:"sub"`
	JWKSetURI        string   `env:"OAUTH_JWKS_URI"`
	IssuerURI        string   `env:"OAUTH_ISSUER_URI"`
	RedirectURI      string   `env:"OAUTH_REDIRECT_URI" envDefault:"{baseUrl}/login/oauth2/code/{registrationId}"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetRegistrationID() string    { return o.RegistrationID }
func (o OAuth) GetClientID() string          { return o.ClientID }
func (o OAuth) GetClientSecret() string      { return o.ClientSecret }
func (o OAuth) GetClientAuthMethod() string  { return o.ClientAuthMethod }
func (o OAuth) GetScopes() []string          { return o.Scopes }
func (o OAuth) GetAuthorizationURI() string  { return o.AuthorizationURI }
func (o OAuth) GetTokenURI() string          { return o.TokenURI }
func (o OAuth) GetUserInfoURI() string       { return o.UserInfoURI }
func (o OAuth) GetUserNameAttribute() string { return o.UserNameAttr }
func (o OAuth) GetJWKSetURI() string         { return o.JWKSetURI }
func (o OAuth) GetIssuerURI() string         { return o.IssuerURI }
func (o OAuth) GetRedirectURI() string       { return o.RedirectURI }
