package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pr-poehali-dev/client-support-chat-2/api"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/handler"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	pathHealth  = "/health"
	pathReady   = "/ready"
	pathSwagger = "/swagger"
)

// New собирает маршруты. Старый фронтенд ходил на функцию-бэкенд с
// открытым CORS и заголовком X-Auth-Token — здесь то же самое.
func New(h *handler.API) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(pathHealth, handler.Health)
	r.GET(pathReady, handler.Ready)
	r.GET(pathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, pathSwagger+"/") })
	r.GET(pathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = pathSwagger + "/index.html"
			c.Request.RequestURI = pathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	// Единый эндпоинт протокола: действие выбирается полем action.
	r.GET("/api/chat", h.Get)
	r.POST("/api/chat", h.Post)
	r.PUT("/api/chat", h.Put)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-User-Id", "X-Auth-Token"},
		MaxAge:         86400,
	}).Handler(r)
}
