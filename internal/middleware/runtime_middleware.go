package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/crowdgate/ticketline/internal/host"
	"github.com/crowdgate/ticketline/internal/store"
)

func RuntimeMiddleware(rt *host.Runtime) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("runtime", rt)
		c.Next()
	}
}

func GetRuntime(c *gin.Context) *host.Runtime {
	rt, exists := c.Get("runtime")
	if !exists {
		return nil
	}
	return rt.(*host.Runtime)
}

func StoreMiddleware(st store.LedgerStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("store", st)
		c.Next()
	}
}

func GetStore(c *gin.Context) store.LedgerStore {
	st, exists := c.Get("store")
	if !exists {
		return nil
	}
	return st.(store.LedgerStore)
}
