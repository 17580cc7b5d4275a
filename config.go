package auth

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// ServiceConfig holds every runtime option the service needs, parsed from
// the environment. It satisfies the Config interface consumed by the auth
// package so handlers never read the environment themselves.
type ServiceConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":4000"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"acs_auth"`

	SigningKey      string   `env:"JWT_SIGNING_KEY,required"`
	TokenExpiration int      `env:"JWT_EXPIRATION_HOURS" envDefault:"168"`
	Issuer          string   `env:"JWT_ISSUER" envDefault:"acs-auth"`
	Audience        []string `env:"JWT_AUDIENCE" envSeparator:","`
	CookieName      string   `env:"SESSION_COOKIE_NAME" envDefault:"token"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"\"ACS_Auth\" <no-reply@acs-auth.dev>"`

	// ClientURL is the SPA origin used to build reset links and
	// configure CORS.
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`

	RecaptchaSecret string `env:"RECAPTCHA_SECRET"`
}

var _ Config = (*ServiceConfig)(nil)

// LoadConfig parses the service configuration from the environment.
func LoadConfig() (*ServiceConfig, error) {
	cfg, err := env.ParseAs[ServiceConfig]()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse environment configuration")
	}
	return &cfg, nil
}

func (c *ServiceConfig) GetSigningKey() string { return c.SigningKey }

func (c *ServiceConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 24
	}
	return c.TokenExpiration
}
func (c *ServiceConfig) GetIssuer() string     { return c.Issuer }
func (c *ServiceConfig) GetAudience() []string { return c.Audience }

func (c *ServiceConfig) GetCookieName() string {
	if c.CookieName == "" {
		return "token"
	}
	return c.CookieName
}
func (c *ServiceConfig) GetBcryptCost() int   { return c.BcryptCost }
func (c *ServiceConfig) GetClientURL() string { return c.ClientURL }
