// Package response implements the uniform API envelope and the token
// cookie handling shared by all handlers.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/apierr"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Envelope is the success wire shape.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorEnvelope is the failure wire shape.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// OK writes a success envelope with the given status.
func OK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Fail normalizes err into the taxonomy and writes the error envelope.
// Internal causes are logged, not surfaced.
func Fail(c *gin.Context, err error) {
	apiErr := apierr.From(err)

	if apiErr.Kind == apierr.KindInternal {
		log.Error().Err(apiErr.Err).Str("path", c.FullPath()).Msg("internal error")
	}

	details := apiErr.Details
	if details == nil {
		details = []string{}
	}

	c.JSON(apiErr.Status, ErrorEnvelope{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		Success:    false,
		Errors:     details,
	})
}

// SetTokenCookies sets both token cookies, each with its own lifetime so an
// expired access token does not linger in the browser for the refresh
// token's much longer window. HttpOnly always; Secure only in production so
// local development over plain HTTP keeps working.
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string, accessMaxAge, refreshMaxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, accessToken, accessMaxAge, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, refreshMaxAge, "/", "", secure, true)
}

// ClearTokenCookies expires both token cookies.
func ClearTokenCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}
