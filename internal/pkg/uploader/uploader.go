package uploader

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"microsocial/internal/pkg/config"

	"github.com/google/uuid"
)

// Uploader stores user media and returns the public URL it is served at.
type Uploader interface {
	UploadFile(file *multipart.FileHeader) (string, error)
	DeleteFile(url string) error
}

// LocalUploader writes files to a directory served as static content.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader() (*LocalUploader, error) {
	cfg := config.GlobalConfig.Storage
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{
		dir:     cfg.LocalDir,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

func (u *LocalUploader) UploadFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	filename := uuid.New().String() + ext

	dst, err := os.Create(filepath.Join(u.dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return u.baseURL + "/" + filename, nil
}

func (u *LocalUploader) DeleteFile(url string) error {
	filename := path.Base(url)
	if filename == "." || filename == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(u.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GlobalUploader instance
var GlobalUploader Uploader

// InitUploader picks the storage driver from config.
func InitUploader() error {
	var (
		up  Uploader
		err error
	)
	switch config.GlobalConfig.Storage.Driver {
	case "oss":
		up, err = NewAliyunOSSUploader()
	default:
		up, err = NewLocalUploader()
	}
	if err != nil {
		return err
	}
	GlobalUploader = up
	return nil
}
