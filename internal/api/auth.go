package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// authRealm is advertised in the WWW-Authenticate header of 401 responses.
const authRealm = `Basic realm="Authentication Required"`

// credentials is the single identity accepted by the API.
type credentials struct {
	username string
	password string
}

// match reports whether username and password equal the configured pair.
// Both comparisons always run so timing does not reveal which one failed.
func (c credentials) match(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.password)) == 1
	return userOK && passOK && c.username != ""
}

// requireAuth rejects requests without the configured Basic credentials.
// Nothing after it in the chain runs on rejection.
func (s *Server) requireAuth(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok || !s.creds.match(username, password) {
		c.Header("WWW-Authenticate", authRealm)
		abortWithError(c, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	c.Set(gin.AuthUserKey, username)
	c.Next()
}
