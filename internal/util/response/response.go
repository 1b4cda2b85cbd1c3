package response

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the JSON body shape shared by every API response.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
	Meta      *Meta  `json:"meta,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

func Success(ctx *gin.Context, data any, message string) {
	send(ctx, http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(ctx *gin.Context, data any, message string) {
	send(ctx, http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(ctx *gin.Context, code int, message string) {
	send(ctx, code, Envelope{
		Success: false,
		Message: message,
	})
}

func ErrorWithDetails(ctx *gin.Context, code int, message string, errors any) {
	send(ctx, code, Envelope{
		Success: false,
		Message: message,
		Errors:  errors,
	})
}

func ValidationError(ctx *gin.Context, errors any) {
	send(ctx, http.StatusUnprocessableEntity, Envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errors,
	})
}

func Paginated(ctx *gin.Context, data any, page, perPage int, total int64) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}

	send(ctx, http.StatusOK, Envelope{
		Success: true,
		Message: "Success",
		Data:    data,
		Meta: &Meta{
			CurrentPage: page,
			PerPage:     perPage,
			Total:       total,
			TotalPages:  totalPages,
		},
	})
}

func send(ctx *gin.Context, code int, envelope Envelope) {
	envelope.Timestamp = time.Now().UTC().Format(time.RFC3339)

	ctx.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	ctx.Header("Pragma", "no-cache")
	ctx.Header("X-Request-Id", requestID())

	ctx.JSON(code, envelope)
}

func requestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(b)
}
