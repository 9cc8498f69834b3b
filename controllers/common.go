package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/minglehq/mingle/config"
	"github.com/minglehq/mingle/middleware"
	"github.com/minglehq/mingle/services"
	"github.com/minglehq/mingle/utils"
)

// requesterID resolves the authenticated user's ObjectID from the Gin context.
func requesterID(ctx *gin.Context) (primitive.ObjectID, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, false
	}
	hex, ok := value.(string)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathObjectID parses a :param path segment as an ObjectID.
func pathObjectID(ctx *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(param))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondWorkflowError maps workflow error kinds to the uniform JSON envelope.
// Internal detail is logged locally and never reaches the caller.
func respondWorkflowError(ctx *gin.Context, err error, resource string, internalCode int) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		utils.Error(ctx, http.StatusBadRequest, 40001, vErr.Field+" "+vErr.Reason)
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, resource+" not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, "you do not own this "+resource)
	case errors.Is(err, services.ErrConflict):
		utils.Error(ctx, http.StatusConflict, 40901, resource+" already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
	default:
		utils.Sugar.Errorw("workflow failed", "resource", resource, "path", ctx.FullPath(), "error", err)
		utils.Error(ctx, http.StatusInternalServerError, internalCode, "internal server error")
	}
}

// saveTempFiles writes every multipart file of the named field into the upload
// temp directory and returns the local paths. Callers remove the files when
// the workflow finishes; the temp cleaner catches anything left behind.
func saveTempFiles(ctx *gin.Context, field string, maxCount int) ([]string, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, nil // no multipart body at all
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	if maxCount > 0 && len(files) > maxCount {
		files = files[:maxCount]
	}

	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxSizeMB) << 20
	tmpDir := TempUploadDir()
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp upload directory: %w", err)
	}

	paths := make([]string, 0, len(files))
	for i, f := range files {
		if f.Size > maxSize {
			removeTempFiles(paths)
			return nil, fmt.Errorf("file %s exceeds %dMB", f.Filename, cfg.UploadMaxSizeMB)
		}
		name := fmt.Sprintf("%d_%d_%s", time.Now().UnixNano(), i, filepath.Base(f.Filename))
		dst := filepath.Join(tmpDir, name)
		if err := ctx.SaveUploadedFile(f, dst); err != nil {
			removeTempFiles(paths)
			return nil, fmt.Errorf("save uploaded file: %w", err)
		}
		paths = append(paths, dst)
	}
	return paths, nil
}

func removeTempFiles(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			utils.Sugar.Warnf("remove temp upload %s failed: %v", p, err)
		}
	}
}

// TempUploadDir is where multipart bodies are staged before the media store
// picks them up.
func TempUploadDir() string {
	return filepath.Join(config.Get().UploadDir, "tmp")
}

func parseLimit(raw string, def, max int64) int64 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
