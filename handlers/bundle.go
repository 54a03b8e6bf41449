package handlers

import (
	"net/http"

	"wheelhouse/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandlerBundle groups every endpoint handler the router needs.
type HandlerBundle struct {
	Booking *BookingHandler
	Payment *PaymentHandler
	Health  gin.HandlerFunc
}

// HealthHandler reports store and Redis reachability, refreshed on each call.
func HealthHandler(redisClient *redis.Client, mongoClient *mongo.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := utils.CheckHealth(c.Request.Context(), redisClient, mongoClient)
		code := http.StatusOK
		if !status.Mongo {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "ok": code == http.StatusOK})
	}
}
