// Package blob issues presigned upload URLs and fetches uploaded objects from S3.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"careerboard/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// ContentTypePDF is the only upload type accepted.
const ContentTypePDF = "application/pdf"

// MaxObjectSize bounds how much of an object is read into memory.
const MaxObjectSize = 10 << 20

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNotConfigured   = errors.New("blob storage not configured")
	ErrObjectNotFound  = errors.New("object not found")
	ErrObjectTooLarge  = errors.New("object too large")
)

type Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Upload struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

type Store struct {
	bucket  string
	expiry  time.Duration
	presign Presigner
	get     Getter
	logger  *log.Logger
	newKey  func() string
}

func New(bucket string, expiry time.Duration, p Presigner, g Getter, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	return &Store{
		bucket:  bucket,
		expiry:  expiry,
		presign: p,
		get:     g,
		logger:  logger,
		newKey:  func() string { return "resumes/" + uuid.NewString() + ".pdf" },
	}
}

// Connect builds an S3 client from the default AWS credential chain.
func Connect(ctx context.Context, cfg config.BlobConfig, logger *log.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(cfg.Bucket, cfg.PresignExpiry, s3.NewPresignClient(client), client, logger), nil
}

// PresignUpload returns a URL the client can PUT a PDF to directly.
func (s *Store) PresignUpload(ctx context.Context, fileType string) (Upload, error) {
	if !strings.EqualFold(strings.TrimSpace(fileType), ContentTypePDF) {
		return Upload{}, fmt.Errorf("%w: %q", ErrUnsupportedType, fileType)
	}
	if s.bucket == "" || s.presign == nil {
		return Upload{}, ErrNotConfigured
	}

	key := s.newKey()
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(ContentTypePDF),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		s.logger.Printf("[Blob] presign error key=%s err=%v", key, err)
		return Upload{}, fmt.Errorf("presign upload: %w", err)
	}
	return Upload{UploadURL: req.URL, Key: key, ExpiresIn: int(s.expiry.Seconds())}, nil
}

// Fetch reads an object fully into memory.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	if s.bucket == "" || s.get == nil {
		return nil, ErrNotConfigured
	}
	out, err := s.get.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		s.logger.Printf("[Blob] get error key=%s err=%v", key, err)
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(io.LimitReader(out.Body, MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if len(b) > MaxObjectSize {
		return nil, ErrObjectTooLarge
	}
	return b, nil
}
