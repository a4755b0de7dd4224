package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jrsteele09/go-auth-middleware/authn"
	"github.com/jrsteele09/go-auth-middleware/authn/jwtbearer"
	"github.com/jrsteele09/go-auth-middleware/authn/password"
	"github.com/jrsteele09/go-auth-middleware/internal/config"
	"github.com/jrsteele09/go-auth-middleware/oauth2login"
	"github.com/jrsteele09/go-auth-middleware/oauth2login/exchange"
	"github.com/jrsteele09/go-auth-middleware/oauth2login/requestrepo"
	"github.com/jrsteele09/go-auth-middleware/oauth2login/userinfo"
	"github.com/jrsteele09/go-auth-middleware/registrations"
	"github.com/jrsteele09/go-auth-middleware/server"
	"github.com/jrsteele09/go-auth-middleware/tokenstore"
	"github.com/jrsteele09/go-auth-middleware/users"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New %w", err)
	}
	displayAppname(c.GetAppName())

	srv, err := buildServer(c)
	if err != nil {
		return fmt.Errorf("buildServer %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	return serve(httpServer)
}

// buildServer wires the provider chain, the OAuth2 login flow and the
// HTTP layer from environment configuration.
func buildServer(c config.Config) (*server.Server, error) {
	registrationRepo := registrations.NewInMemoryRepo()
	if c.GetClientID() != "" {
		if err := registrationRepo.Upsert(&registrations.Registration{
			ID:               c.GetRegistrationID(),
			ClientID:         c.GetClientID(),
			ClientSecret:     c.GetClientSecret(),
			AuthMethod:       registrations.ClientAuthMethod(c.GetClientAuthMethod()),
			RedirectURI:      c.GetRedirectURI(),
			Scopes:           c.GetScopes(),
			AuthorizationURI: c.GetAuthorizationURI(),
			TokenURI:         c.GetTokenURI(),
			UserInfoURI:      c.GetUserInfoURI(),
			UserNameAttr:     c.GetUserNameAttribute(),
			JWKSetURI:        c.GetJWKSetURI(),
			IssuerURI:        c.GetIssuerURI(),
		}); err != nil {
			return nil, fmt.Errorf("registration %w", err)
		}
	}

	exchanger := exchange.NewRESTExchanger()
	userService := userinfo.NewRESTService()

	loginProvider, err := oauth2login.NewLoginProvider(exchanger, userService)
	if err != nil {
		return nil, err
	}
	oidcProvider, err := oauth2login.NewOIDCLoginProvider(exchanger, userService)
	if err != nil {
		return nil, err
	}

	userRepo := users.NewInMemoryRepo()
	passwordOptions := []password.Option{}
	if c.GetRevealUserNotFound() {
		passwordOptions = append(passwordOptions, password.WithRevealUserNotFound())
	}
	passwordProvider, err := password.New(userRepo, passwordOptions...)
	if err != nil {
		return nil, err
	}

	providers := []authn.Provider{loginProvider, oidcProvider, passwordProvider}
	if key := c.GetJWTSigningKey(); len(key) > 0 {
		bearerProvider, err := jwtbearer.New(
			func(*jwtlib.Token) (any, error) { return key, nil },
			jwtbearer.WithIssuer(c.GetJWTIssuer()),
			jwtbearer.WithAudience(c.GetJWTAudience()),
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, bearerProvider)
	}

	sessions := authn.NewSessionRegistry(c.GetMaxSessionsPerUser())
	manager, err := authn.NewProviderManager(providers,
		authn.WithPublisher(logPublisher{}),
		authn.WithSessionAdmission(sessions, authn.KindOAuth2Login, authn.KindUsernamePassword),
	)
	if err != nil {
		return nil, err
	}

	return server.New(c, manager, registrationRepo, requestrepo.NewInMemoryRepo(), tokenstore.NewInMemoryStore(),
		server.WithPublisher(logPublisher{}),
		server.WithSessionRegistry(sessions),
	)
}

// logPublisher writes authentication outcomes to the application log.
type logPublisher struct{}

func (logPublisher) Publish(event authn.Event) {
	entry := log.Info()
	if event.Err != nil {
		entry = log.Warn().Err(event.Err)
	}
	entry.Str("kind", string(event.Kind)).Str("principal", event.Principal).Str("token_kind", event.TokenKind).Msg("authentication event")
}

func serve(httpServer *http.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.ListenAndServe %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Shutdown %w", err)
		}
		return nil
	})
	return group.Wait()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
