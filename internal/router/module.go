package router

import "github.com/gin-gonic/gin"

// Module is a feature slice that mounts its own routes. The registry
// hands every module the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
