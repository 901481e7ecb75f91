package filestore

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/clinsight/biomed-admin-api/pkg/config"
)

// S3Store reads survey PDFs from an S3-compatible bucket. The credential is
// read-only; nothing in this service writes objects.
type S3Store struct {
	client    *s3.S3
	bucket    string
	keyPrefix string
}

// New validates the configuration and builds the store. Missing bucket or
// region settings fail here, at startup, rather than on first request.
func New(cfg config.FileStoreConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("filestore: bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("filestore: region is required")
	}

	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""))
	}
	if cfg.ForcePathStyle {
		awsCfg = awsCfg.WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("filestore: create session: %w", err)
	}

	return &S3Store{
		client:    s3.New(sess),
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// Fetch returns a stream for the object behind the given stored-file
// reference. The caller must close the returned reader.
func (s *S3Store) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if ref == "" {
		return nil, fmt.Errorf("filestore: empty file reference")
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyPrefix + ref),
	})
	if err != nil {
		return nil, fmt.Errorf("filestore: get %s: %w", ref, err)
	}
	if out.Body == nil {
		return nil, fmt.Errorf("filestore: get %s: empty body", ref)
	}
	return out.Body, nil
}

// FindByName looks up an object whose key matches the given filename under
// the configured prefix. It returns the stored-file reference, or "" when no
// such object exists.
func (s *S3Store) FindByName(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyPrefix + name),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			switch aerr.Code() {
			case s3.ErrCodeNoSuchKey, "NotFound":
				return "", nil
			}
		}
		return "", fmt.Errorf("filestore: head %s: %w", name, err)
	}
	return name, nil
}
