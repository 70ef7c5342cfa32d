package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// flowCookie ties a browser to the credentials it staged. It plays the role
// of origin-scoped browser storage: the server only ever sees its own flows.
const flowCookie = "oauth_flow"

func newFlowSession() string {
	return uuid.New().String()
}

// flowSession returns the session from the flow cookie, if it is a valid ID.
func flowSession(c *gin.Context) (string, bool) {
	value, err := c.Cookie(flowCookie)
	if err != nil || value == "" {
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", false
	}
	return value, true
}

func setFlowCookie(c *gin.Context, session string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flowCookie, session, maxAge, "/", "", secure, true)
}

func clearFlowCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flowCookie, "", -1, "/", "", secure, true)
}
