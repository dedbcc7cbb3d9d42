package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crowdgate/ticketline/internal/helpers"
	"github.com/crowdgate/ticketline/internal/ledger"
	"github.com/crowdgate/ticketline/internal/middleware"
)

type RegisterCodeRequest struct {
	CodeHash string `json:"code_hash" binding:"required"`
}

// RegisterCode makes a supply account code hash available for instantiation.
func RegisterCode(c *gin.Context) {
	var req RegisterCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	code, err := ledger.ParseCodeHash(req.CodeHash)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid code hash.")
		return
	}

	rt := middleware.GetRuntime(c)
	if rt == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	if !rt.RegisterCode(code) {
		c.JSON(http.StatusOK, gin.H{"message": "Code hash already registered."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Code hash registered successfully.",
		"code_hash": code.String(),
	})
}
