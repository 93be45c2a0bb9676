package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler mounts one resource under Root on each access tier.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup)
}

// MountAll registers every handler under its root on the three tier groups.
func MountAll(handlers []IHttpHandler, pub, private, admin *gin.RouterGroup) {
	for _, h := range handlers {
		h.SetRoutes(pub.Group(h.Root()), private.Group(h.Root()), admin.Group(h.Root()))
	}
}
