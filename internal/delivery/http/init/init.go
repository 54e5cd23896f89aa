package http_init

import (
	"log"
	"net/http"

	http_common "github.com/NicolasKocher/sprint-poker/internal/delivery/http/common"
	middleware_cors "github.com/NicolasKocher/sprint-poker/internal/delivery/http/middleware/cors"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type ControllerPool struct {
	pool   []Controller
	rg     *gin.RouterGroup
	engine *gin.Engine
}

func NewControllerPool() *ControllerPool {
	engine := gin.Default()
	engine.Use(middleware_cors.New())

	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, http_common.ErrorResponse{
			Error: "method not allowed",
		})
	})

	rg := engine.Group(apiPrefix)
	return &ControllerPool{
		pool:   make([]Controller, 0, 10),
		rg:     rg,
		engine: engine,
	}
}

func (pool *ControllerPool) Register() {
	for _, c := range pool.pool {
		c.RegisterRoutes(pool.rg)
	}
}

func (pool *ControllerPool) RunAll(port string) {
	if err := pool.engine.Run(":" + port); err != nil {
		log.Fatalf("failed to run HTTP server: %v", err)
	}
}

func (pool *ControllerPool) Add(c Controller) {
	pool.pool = append(pool.pool, c)
}

// Engine exposes the underlying engine so tests can drive it with httptest.
func (pool *ControllerPool) Engine() *gin.Engine {
	return pool.engine
}
