package handler

import (
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	usermodel "microsocial/internal/domain/user/model"
	"microsocial/internal/pkg/uploader"
	"microsocial/pkg/response"

	"github.com/gin-gonic/gin"
)

// CurrentUserID returns the authenticated user's ID, or "" for anonymous
// callers behind OptionalAuthMiddleware.
func CurrentUserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// CurrentRole returns the caller's role, 0 when unauthenticated.
func CurrentRole(c *gin.Context) int {
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(int); ok {
			return role
		}
	}
	return 0
}

// IsAdmin reports whether the caller is a platform administrator.
func IsAdmin(c *gin.Context) bool {
	return CurrentRole(c) == usermodel.RoleAdmin
}

// TokenExpiry returns when the presented token expires; zero when absent.
func TokenExpiry(c *gin.Context) time.Time {
	if v, ok := c.Get("tokenExpiresAt"); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// UploadFiles handles batched media upload.
// @Summary Upload media files
// @Tags Common
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]string} "URLs"
// @Router /upload [post]
func UploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No files uploaded")
		return
	}

	if uploader.GlobalUploader == nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Uploader not initialized")
		return
	}

	// Indexed result slice keeps the response order stable.
	urls := make([]string, len(files))

	var wg sync.WaitGroup
	var errOnce sync.Once
	var uploadErr error

	// Cap concurrent uploads.
	sem := make(chan struct{}, 5)

	for i, file := range files {
		wg.Add(1)
		go func(index int, f *multipart.FileHeader) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if uploadErr != nil {
				return
			}

			url, err := uploader.GlobalUploader.UploadFile(f)
			if err != nil {
				errOnce.Do(func() {
					uploadErr = err
				})
				return
			}

			urls[index] = url
		}(i, file)
	}

	wg.Wait()

	if uploadErr != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Upload failed: "+uploadErr.Error())
		return
	}

	response.Success(c, urls)
}
