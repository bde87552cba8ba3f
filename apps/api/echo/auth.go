package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core"
	"github.com/bths-repair/bths-repair-the-world/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config. Tokens are
	// minted by the identity provider with the shared secret; the Subject
	// claim is the session email.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextUserKey = "user"
)

// optionalJWT validates a bearer token when the request carries one and
// lets anonymous requests through untouched. Routes that are public but
// resolve `@me` for signed-in callers use it; a present token is still
// checked as strictly as appJWTConfig does.
func optionalJWT() echo.MiddlewareFunc {
	conf := appJWTConfig
	conf.Skipper = func(ctx echo.Context) bool {
		return ctx.Request().Header.Get(echo.HeaderAuthorization) == ""
	}
	return middleware.JWTWithConfig(conf)
}

// Claims represents the authorization claims transmitted via a JWT.
// Position is deliberately absent: it is always read from the database
// so a promotion or demotion takes effect without re-issuing tokens.
type Claims struct {
	jwt.StandardClaims
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// Email returns the session email carried in the Subject claim.
func (c Claims) Email() string { return c.Subject }

// NewClaims builds session claims for email. A profile is not required;
// identity exists before registration completes.
func NewClaims(email, name string, emailVerified bool) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   email,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:          name,
		EmailVerified: emailVerified,
	}
}

// GetUserClaims builds session claims for an existing member.
func GetUserClaims(usr user.User) *Claims {
	return NewClaims(usr.Email, usr.PreferredName, usr.EmailVerified)
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUser fetches the caller's member record, caching it on the
// request context. Fails with ErrNotFound when the session has no
// profile yet.
func getContextUser(ctx echo.Context, svc *user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByEmail(ctx.Request().Context(), claims.Email())
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
