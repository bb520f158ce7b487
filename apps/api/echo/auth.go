package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/auth"
	"github.com/Chhotu7079/UniCore/core/user"
)

const tokenContextKey = "userToken"

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")

// appJWTConfig is the JWT auth middleware config.
func appJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role"`
}

func GetAccountClaims(conf *core.Config, acc user.Account) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(acc.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: acc.Role.String(),
	}
}

// Principal resolves the identity carried by the claims.
func (c Claims) Principal() (auth.Principal, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return auth.Principal{}, errors.Wrap(err, "parsing subject")
	}
	role, err := auth.ParseRole(c.Role)
	if err != nil {
		return auth.Principal{}, err
	}
	p := auth.Principal{ID: id, Role: role}
	if !p.IsAuthenticated() {
		return auth.Principal{}, errors.New("invalid principal")
	}
	return p, nil
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	jwtConf := appJWTConfig(conf)
	method := jwt.GetSigningMethod(jwtConf.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// principalMiddleware moves the principal of a validated token into the request context.
func principalMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		p, err := claims.Principal()
		if err != nil {
			return errUnauthorized
		}
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(auth.WithPrincipal(req.Context(), p)))
		return next(ctx)
	}
}

// principal returns the request principal. The zero Principal is returned for anonymous requests.
func principal(ctx echo.Context) auth.Principal {
	p, _ := auth.FromContext(ctx.Request().Context())
	return p
}

type (
	LoginResponse struct {
		Token string `json:"token"`
	}

	authApi struct {
		conf *core.Config
		svc  *user.Service
	}
)

func registerAuthAPI(g *echo.Group, conf *core.Config, svc *user.Service) {
	api := authApi{conf: conf, svc: svc}
	g.POST("/auth/login", api.login)
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	acc, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.conf, GetAccountClaims(api.conf, acc))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}
