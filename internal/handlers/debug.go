package handlers

import (
	// Стандартные библиотеки
	"context"
	"log"
	"net/http"
	"time"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// DebugDB - GET /debug/db: проверка соединения с БД.
func (h *Handler) DebugDB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		log.Printf("Проверка соединения с БД не прошла: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"dbConnected": false, "driver": h.store.Driver()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dbConnected": true, "driver": h.store.Driver()})
}
