package router

import "github.com/gin-gonic/gin"

// Module is one routable feature area. Auth, users and friends each
// implement it and attach their own middleware per route group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
