package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewServer creates a new HTTP server with all routes configured. The
// metrics handler is mounted on /metrics when non-nil.
func NewServer(handler *Handler, metricsHandler http.Handler) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.SetHTMLTemplate(loadTemplates())

	setupRoutes(r, handler, metricsHandler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, metricsHandler http.Handler) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/changes")
	})

	// HTML views
	r.GET("/changes", handler.GetChanges)
	r.GET("/change", handler.GetChange)
	r.GET("/change/:id", handler.GetChange)
	r.GET("/products", handler.GetProducts)
	r.GET("/changes.rss", handler.GetChangesFeed)

	// JSON API
	api := r.Group("/api")
	{
		api.GET("/changes", handler.APIListChanges)
		api.GET("/changes/latest", handler.APIGetLatestChange)
		api.GET("/changes/:id", handler.APIGetChange)
		api.GET("/products", handler.APIGetProducts)
	}

	r.GET("/health", handler.GetHealth)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.In(time.Local).Format("2006-01-02 15:04:05 MST")
		},
	}

	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}
