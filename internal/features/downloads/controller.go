package downloads

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"biodaat-backend/internal/features/tokens"
	"biodaat-backend/internal/util/response"

	"github.com/gin-gonic/gin"
)

type DownloadController struct {
	downloadService *DownloadService
	tokenService    *tokens.TokenService
}

func NewDownloadController(
	downloadService *DownloadService,
	tokenService *tokens.TokenService,
) *DownloadController {
	return &DownloadController{
		downloadService: downloadService,
		tokenService:    tokenService,
	}
}

func (c *DownloadController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/download", c.Download)
	router.GET("/preview", c.Preview)
	router.GET("/check-token", c.CheckToken)
}

// Download
// @Summary Download a generated biodata
// @Description Stream the biodata file for a download token, or for a raw filename on the degraded fallback path
// @Tags downloads
// @Param token query string false "Opaque or signed download token"
// @Param file query string false "Raw filename (degraded fallback, whitelist checked)"
// @Success 200 {file} file
// @Failure 400
// @Failure 404
// @Failure 410
// @Failure 429
// @Failure 500
// @Router /download [get]
func (c *DownloadController) Download(ctx *gin.Context) {
	c.serve(ctx, "attachment", true)
}

// Preview
// @Summary Preview a generated biodata inline
// @Description Same validity checks as download but served inline and without consuming a download
// @Tags downloads
// @Param token query string true "Opaque or signed download token"
// @Success 200 {file} file
// @Failure 400
// @Failure 404
// @Failure 410
// @Failure 500
// @Router /preview [get]
func (c *DownloadController) Preview(ctx *gin.Context) {
	c.serve(ctx, "inline", false)
}

func (c *DownloadController) serve(ctx *gin.Context, disposition string, countServe bool) {
	token := ctx.Query("token")
	file := ctx.Query("file")

	var (
		serve *FileServe
		err   error
	)

	switch {
	case file != "" && token == "":
		serve, err = c.downloadService.ResolveByFilename(file)
	case token != "":
		serve, err = c.downloadService.ResolveByToken(token, ctx.ClientIP(), countServe)
	default:
		response.Error(ctx, http.StatusBadRequest, "Download token is required")
		return
	}

	if err != nil {
		c.respondServeError(ctx, err)
		return
	}

	c.streamFile(ctx, serve, disposition)
}

func (c *DownloadController) streamFile(ctx *gin.Context, serve *FileServe, disposition string) {
	reader, size, err := c.downloadService.vault.Open(serve.Path)
	if err != nil {
		response.Error(ctx, http.StatusNotFound, "File not found")
		return
	}
	defer reader.Close()

	ctx.Header("Content-Type", serve.ContentType)
	ctx.Header("Content-Length", fmt.Sprintf("%d", size))
	ctx.Header("Content-Disposition", fmt.Sprintf("%s; filename=\"%s\"", disposition, serve.Filename))
	ctx.Header("Cache-Control", "no-cache, must-revalidate")
	ctx.Header("Pragma", "no-cache")
	ctx.Header("Expires", "0")
	ctx.Status(http.StatusOK)

	if _, err := io.Copy(ctx.Writer, reader); err != nil {
		// Headers are gone; nothing to do beyond logging at the service.
		return
	}
}

func (c *DownloadController) respondServeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrForbiddenFilename):
		response.Error(ctx, http.StatusBadRequest, "Invalid filename")
	case errors.Is(err, ErrTokenExpired):
		response.Error(ctx, http.StatusGone, "Download token has expired")
	case errors.Is(err, ErrMaxDownloads):
		response.Error(ctx, http.StatusTooManyRequests, "Maximum downloads exceeded")
	case errors.Is(err, ErrStoreUnavailable):
		response.Error(ctx, http.StatusInternalServerError, "Could not verify download token, please retry")
	case errors.Is(err, ErrFileNotFound):
		response.Error(ctx, http.StatusNotFound, "File not found")
	default:
		response.Error(ctx, http.StatusNotFound, "Invalid download token")
	}
}

// CheckToken
// @Summary Check download token validity
// @Description Non-mutating probe reporting expiry and remaining downloads for a DB-backed token
// @Tags downloads
// @Param token query string true "Opaque download token"
// @Success 200 {object} tokens.CheckResult
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /check-token [get]
func (c *DownloadController) CheckToken(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		response.Error(ctx, http.StatusBadRequest, "Token is required")
		return
	}

	result, err := c.tokenService.Check(token)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Could not verify token, please retry")
		return
	}
	if result == nil {
		response.Error(ctx, http.StatusNotFound, "Invalid token")
		return
	}

	response.Success(ctx, result, "Success")
}
