package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error responses are {"error": "..."} for single failures and
// {"errors": ["...", ...]} when validation reports several violations.
// Internal details never reach the client; they are logged server-side.

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

func RespondValidationErrors(ctx *gin.Context, errs []string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, message)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, message)
}

func RespondInternal(ctx *gin.Context) {
	RespondError(ctx, http.StatusInternalServerError, "Internal server error")
}
