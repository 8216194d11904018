package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dual-finance/governance-proposals/internal/instructions"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/proposal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// sendError logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// handleLookupError maps store and registry errors to HTTP status codes
func handleLookupError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, proposal.ErrDraftNotFound):
		sendError(c, http.StatusNotFound, "Proposal not found", err)
	case errors.Is(err, proposal.ErrFormNotFound):
		sendError(c, http.StatusNotFound, "Instruction not found", err)
	case errors.Is(err, instructions.ErrUnknownKind):
		sendError(c, http.StatusBadRequest, err.Error(), err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendSuccessMessage is a helper function that sends a success message
func sendSuccessMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, SuccessResponse{Message: message})
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}

// bindJSON decodes the request body keeping numbers as json.Number, so token
// amounts above 2^53 survive untouched.
func bindJSON(c *gin.Context, target interface{}) error {
	if c.Request.Body == nil {
		return fmt.Errorf("request body is required")
	}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// envelopeStatus is 200 for a valid envelope and 422 otherwise.
func envelopeStatus(valid bool) int {
	if valid {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}
