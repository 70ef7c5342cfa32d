package main

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// newRouter wires the capture page, the callback and the MCP endpoint.
func newRouter(a *app, mcp *server.StreamableHTTPServer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), hideQuery, requestLogger(), restoreQuery)
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(static))

	router.GET("/", noStore, a.index)
	router.POST("/authorize", noStore, a.authorize)
	router.GET("/callback", noStore, a.callback)
	router.GET("/healthz", a.healthz)

	if mcp != nil {
		// Register POST, GET, DELETE methods for the /mcp path, all handled by the MCP server
		for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
			router.Handle(method, "/mcp", corsMiddleware(), gin.WrapH(mcp))
		}
		router.OPTIONS("/mcp", corsMiddleware())
	}

	return router
}
