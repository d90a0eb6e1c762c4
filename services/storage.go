package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"caseflow/config"
	"caseflow/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StorageProvider defines the interface for case document storage backends
type StorageProvider interface {
	UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) error
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// NewStorage picks a provider from configuration: R2/S3 when credentials are
// set, local filesystem otherwise
func NewStorage(cfg *config.Config) StorageProvider {
	if cfg.R2AccountID != "" && cfg.R2AccessKeyID != "" && cfg.R2SecretAccessKey != "" && cfg.R2BucketName != "" {
		r2, err := NewR2Storage(cfg)
		if err != nil {
			log.Printf("[WARNING] Failed to initialize R2 storage: %v. Falling back to local storage.", err)
			return NewLocalStorage(cfg.UploadDir)
		}
		log.Printf("Storage established (Cloudflare R2 - bucket: %s)", cfg.R2BucketName)
		return r2
	}
	log.Printf("Storage established (local filesystem - path: %s)", cfg.UploadDir)
	return NewLocalStorage(cfg.UploadDir)
}

// R2Storage implements StorageProvider for Cloudflare R2 (S3-compatible)
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewR2Storage creates an R2 storage provider
func NewR2Storage(cfg *config.Config) (*R2Storage, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	creds := credentials.NewStaticCredentialsProvider(
		cfg.R2AccessKeyID,
		cfg.R2SecretAccessKey,
		"",
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"), // R2 uses "auto" region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
	}, nil
}

func (r *R2Storage) UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}
	if _, err := r.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to R2: %w", err)
	}
	return nil
}

func (r *R2Storage) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}
	if _, err := r.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

func (r *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}
	result, err := r.client.GetObject(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

func (r *R2Storage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}
	presignedReq, err := r.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return presignedReq.URL, nil
}

// LocalStorage implements StorageProvider for the local filesystem
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

func (l *LocalStorage) path(key string) string {
	return filepath.Join(l.baseDir, filepath.FromSlash(key))
}

func (l *LocalStorage) UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) error {
	path := l.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	f, err := os.Open(l.path(key))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, "application/octet-stream", nil
}

// GetSignedURL returns the plain download path; local files need no signing
func (l *LocalStorage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "/" + strings.TrimPrefix(key, "/"), nil
}

// DocumentService stores case documents and their metadata rows
type DocumentService struct {
	db      *gorm.DB
	storage StorageProvider
}

func NewDocumentService(db *gorm.DB, storage StorageProvider) *DocumentService {
	return &DocumentService{db: db, storage: storage}
}

// SaveCaseDocument uploads a file and records its metadata against the case
func (s *DocumentService) SaveCaseDocument(ctx context.Context, caseID string, file *multipart.FileHeader, documentType string, uploadedBy *string) (*models.CaseDocument, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ext := filepath.Ext(file.Filename)
	fileName := uuid.New().String() + ext
	key := fmt.Sprintf("cases/%s/%s", caseID, fileName)

	if err := s.storage.UploadReader(ctx, src, key, contentType, file.Size); err != nil {
		return nil, err
	}

	doc := models.CaseDocument{
		CaseID:           caseID,
		FileName:         fileName,
		FileOriginalName: file.Filename,
		StorageKey:       key,
		FileSize:         file.Size,
		MimeType:         contentType,
		DocumentType:     documentType,
		UploadedByID:     uploadedBy,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		// Best effort cleanup of the orphaned object
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Printf("[WARNING] failed to clean up orphaned object %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to record case document: %w", err)
	}
	return &doc, nil
}

// OpenCaseDocument returns a reader for a stored document
func (s *DocumentService) OpenCaseDocument(ctx context.Context, documentID string) (io.ReadCloser, *models.CaseDocument, error) {
	var doc models.CaseDocument
	if err := s.db.First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch document %s: %w", documentID, err)
	}
	reader, _, err := s.storage.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return reader, &doc, nil
}

// DeleteCaseDocument removes the stored object and its metadata row
func (s *DocumentService) DeleteCaseDocument(ctx context.Context, documentID string) error {
	var doc models.CaseDocument
	if err := s.db.First(&doc, "id = ?", documentID).Error; err != nil {
		return fmt.Errorf("failed to fetch document %s: %w", documentID, err)
	}
	if err := s.storage.Delete(ctx, doc.StorageKey); err != nil {
		return err
	}
	if err := s.db.Delete(&doc).Error; err != nil {
		return fmt.Errorf("failed to delete document row %s: %w", documentID, err)
	}
	return nil
}
