// Package file provides HTTP handlers for profile photo and résumé upload and download.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sachin-security/sachin-security-sub000/internal/controller"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
	"github.com/sachin-security/sachin-security-sub000/internal/storage"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

const msgFileNotFound = "File not found"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// allowedType is one accepted declared content type. Sniffed lists what
// http.DetectContentType may report for a genuine file of that type, and
// Magic, when set, is the signature the content must start with.
type allowedType struct {
	Ext     string
	Sniffed []string
	Magic   []byte
}

// oleSignature opens every OLE2 compound file, the container of legacy .doc.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

type uploadRule struct {
	Field   string
	Types   map[string]allowedType
	TypeMsg string
}

var uploadRules = map[model.UploadKind]uploadRule{
	model.UploadProfile: {
		Field: "profile",
		Types: map[string]allowedType{
			"image/jpeg": {Ext: ".jpg", Sniffed: []string{"image/jpeg"}},
			"image/png":  {Ext: ".png", Sniffed: []string{"image/png"}},
			"image/webp": {Ext: ".webp", Sniffed: []string{"image/webp"}},
			"image/gif":  {Ext: ".gif", Sniffed: []string{"image/gif"}},
		},
		TypeMsg: "Invalid file type. Only JPEG, PNG, WebP and GIF images are allowed",
	},
	model.UploadResume: {
		Field: "resume",
		Types: map[string]allowedType{
			"application/pdf":    {Ext: ".pdf", Sniffed: []string{"application/pdf"}},
			"application/msword": {Ext: ".doc", Sniffed: []string{"application/octet-stream"}, Magic: oleSignature},
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {
				Ext:     ".docx",
				Sniffed: []string{"application/zip"},
			},
		},
		TypeMsg: "Invalid file type. Only PDF and Word documents are allowed",
	},
}

// FileController handles file related endpoints
type FileController struct {
	DB       database.Store
	Storage  storage.ObjectStore
	MaxBytes int64
}

// NewFileController creates a new instance of FileController
func NewFileController(db database.Store, objects storage.ObjectStore, maxBytes int64) *FileController {
	return &FileController{
		DB:       db,
		Storage:  objects,
		MaxBytes: maxBytes,
	}
}

func (fc *FileController) uploads() database.Collection {
	return fc.DB.Collection(model.CollectionUploads)
}

// UploadProfileHandler stores an employee profile photo.
// @Summary Upload profile photo
// @Description JPEG, PNG, WebP or GIF up to the configured size limit
// @Tags Files
// @Accept mpfd
// @Produce json
// @Param profile formData file true "Profile photo"
// @Success 200 {object} utilities.Envelope{data=model.UploadResponse} "Stored file reference"
// @Failure 400 {object} utilities.Envelope "No file, disallowed type or too large"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 500 {object} utilities.Envelope "Storage error"
// @Router /upload/profile [post]
func (fc *FileController) UploadProfileHandler(c *gin.Context) {
	fc.upload(c, model.UploadProfile)
}

// UploadResumeHandler stores an applicant résumé.
// @Summary Upload résumé
// @Description PDF, DOC or DOCX up to the configured size limit
// @Tags Files
// @Accept mpfd
// @Produce json
// @Param resume formData file true "Résumé"
// @Success 200 {object} utilities.Envelope{data=model.UploadResponse} "Stored file reference"
// @Failure 400 {object} utilities.Envelope "No file, disallowed type or too large"
// @Failure 500 {object} utilities.Envelope "Storage error"
// @Router /upload/resume [post]
func (fc *FileController) UploadResumeHandler(c *gin.Context) {
	fc.upload(c, model.UploadResume)
}

func (fc *FileController) upload(c *gin.Context, kind model.UploadKind) {
	rule := uploadRules[kind]

	data, header, allowed, err := fc.readUpload(c, rule)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	now := controller.Now()
	fileID := uuid.NewString()
	filename := fmt.Sprintf("%d-%s", now.UnixMilli(), safeName(header.OriginalName, allowed.Ext))
	up := model.Upload{
		StorageID:    fileID,
		Kind:         kind,
		Filename:     filename,
		OriginalName: header.OriginalName,
		ContentType:  header.ContentType,
		Size:         int64(len(data)),
		StorageKey:   fmt.Sprintf("%s/%d-%s%s", kind, now.UnixMilli(), fileID, allowed.Ext),
		UploadedAt:   now,
	}

	ctx := c.Request.Context()
	if err := fc.Storage.Put(ctx, up.StorageKey, up.ContentType, bytes.NewReader(data), up.Size); err != nil {
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}
	if _, err := fc.uploads().Insert(ctx, up); err != nil {
		fc.discard(c, up.StorageKey)
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}

	utilities.RespondData(c, http.StatusOK, model.UploadResponse{
		FileID:       fileID,
		Filename:     up.Filename,
		OriginalName: up.OriginalName,
		ContentType:  up.ContentType,
		Size:         up.Size,
		URL:          fmt.Sprintf("/api/download/%s/%s", kind, fileID),
		UploadedAt:   up.UploadedAt,
	})
}

type partHeader struct {
	OriginalName string
	ContentType  string
}

// readUpload checks the file part, its size and its type before anything is written.
func (fc *FileController) readUpload(c *gin.Context, rule uploadRule) ([]byte, partHeader, allowedType, error) {
	var none partHeader
	rawFile, err := c.FormFile(rule.Field)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			return nil, none, allowedType{}, fc.tooLarge()
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, none, allowedType{}, utilities.ValidationError("No file uploaded")
		default:
			return nil, none, allowedType{}, utilities.ValidationError("Failed to retrieve file: %s", err.Error())
		}
	}
	if rawFile.Size > fc.MaxBytes {
		return nil, none, allowedType{}, fc.tooLarge()
	}

	declared, _, err := mime.ParseMediaType(rawFile.Header.Get("Content-Type"))
	if err != nil {
		return nil, none, allowedType{}, utilities.ValidationError("%s", rule.TypeMsg)
	}
	allowed, ok := rule.Types[declared]
	if !ok {
		return nil, none, allowedType{}, utilities.ValidationError("%s", rule.TypeMsg)
	}

	f, err := rawFile.Open()
	if err != nil {
		return nil, none, allowedType{}, utilities.Unhandled(fmt.Errorf("open upload: %w", err))
	}
	defer func() {
		if err := f.Close(); err != nil {
			utilities.Logger(c).Warn("failed to close upload")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, fc.MaxBytes+1))
	if err != nil {
		return nil, none, allowedType{}, utilities.Unhandled(fmt.Errorf("read upload: %w", err))
	}
	if int64(len(data)) > fc.MaxBytes {
		return nil, none, allowedType{}, fc.tooLarge()
	}
	if len(data) == 0 {
		return nil, none, allowedType{}, utilities.ValidationError("Uploaded file is empty")
	}

	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	if !slices.Contains(allowed.Sniffed, sniffed) || !bytes.HasPrefix(data, allowed.Magic) {
		return nil, none, allowedType{}, utilities.ValidationError("File content does not match its declared type")
	}

	return data, partHeader{OriginalName: filepath.Base(rawFile.Filename), ContentType: declared}, allowed, nil
}

func (fc *FileController) tooLarge() error {
	return utilities.ValidationError("File size exceeds %d MB limit", fc.MaxBytes>>20)
}

// discard removes an object whose metadata could not be saved.
func (fc *FileController) discard(c *gin.Context, key string) {
	if err := fc.Storage.Delete(context.WithoutCancel(c.Request.Context()), key); err != nil {
		utilities.Logger(c).Error("failed to remove orphaned object", "key", key, "error", err.Error())
	}
}

func safeName(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Trim(unsafeName.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "file"
	}
	return base + ext
}

// DownloadProfileHandler streams a stored profile photo.
// @Summary Download profile photo
// @Tags Files
// @Produce octet-stream
// @Param fileId path string true "File id returned by the upload"
// @Success 200 {string} binary "File content"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "File not found"
// @Router /download/profile/{fileId} [get]
func (fc *FileController) DownloadProfileHandler(c *gin.Context) {
	fc.download(c, model.UploadProfile)
}

// DownloadResumeHandler streams a stored résumé.
// @Summary Download résumé
// @Tags Files
// @Produce octet-stream
// @Param fileId path string true "File id returned by the upload"
// @Success 200 {string} binary "File content"
// @Failure 401 {object} utilities.Envelope "Unauthorized"
// @Failure 404 {object} utilities.Envelope "File not found"
// @Router /download/resume/{fileId} [get]
func (fc *FileController) DownloadResumeHandler(c *gin.Context) {
	fc.download(c, model.UploadResume)
}

func (fc *FileController) download(c *gin.Context, kind model.UploadKind) {
	ctx := c.Request.Context()

	var up model.Upload
	filters := append(database.ByStorageID(c.Param("fileId")), database.Eq("kind", string(kind)))
	if err := fc.uploads().FindOne(ctx, filters, &up); err != nil {
		utilities.RespondError(c, utilities.FromStore(err, msgFileNotFound, ""))
		return
	}

	body, size, err := fc.Storage.Get(ctx, up.StorageKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		utilities.RespondError(c, utilities.NotFoundError(msgFileNotFound))
		return
	}
	if err != nil {
		utilities.RespondError(c, utilities.Unhandled(err))
		return
	}
	defer func() {
		if err := body.Close(); err != nil {
			utilities.Logger(c).Warn("failed to close storage reader", "error", err.Error())
		}
	}()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": up.OriginalName})
	c.DataFromReader(http.StatusOK, size, up.ContentType, body, map[string]string{
		"Content-Disposition": disposition,
	})
}
