package persistent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/mercatto/catalog-sync/pkg/s3client"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

const _deleteBatchLimit = 1000

type StorageRepo struct {
	*s3client.S3Client
	bucket        string
	publicBaseURL string
}

func NewStorageRepo(s3c *s3client.S3Client, bucket, publicBaseURL string) *StorageRepo {
	return &StorageRepo{s3c, bucket, strings.TrimRight(publicBaseURL, "/")}
}

// Upload writes an object; with upsert=false an existing object is reported
// as errs.ErrObjectExists instead of being overwritten, which is what makes
// retried internalizations and concurrent forks idempotent.
func (r *StorageRepo) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if !upsert {
		input.IfNoneMatch = aws.String("*")
	}

	_, err := r.Client.PutObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return fmt.Errorf("StorageRepo - Upload: %w", errs.ErrObjectExists)
		}
		return fmt.Errorf("StorageRepo - Upload - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *StorageRepo) Download(ctx context.Context, path string) ([]byte, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, fmt.Errorf("StorageRepo - Download - r.Client.GetObject: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("StorageRepo - Download - buf.ReadFrom: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *StorageRepo) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	paginator := s3.NewListObjectsV2Paginator(r.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("StorageRepo - List - paginator.NextPage: %w", err)
		}
		for _, obj := range page.Contents {
			names = append(names, aws.ToString(obj.Key))
		}
	}

	return names, nil
}

func (r *StorageRepo) DeleteBatch(ctx context.Context, paths []string) error {
	for start := 0; start < len(paths); start += _deleteBatchLimit {
		end := start + _deleteBatchLimit
		if end > len(paths) {
			end = len(paths)
		}

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, path := range paths[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(path)})
		}

		_, err := r.Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(r.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("StorageRepo - DeleteBatch - r.Client.DeleteObjects: %w", err)
		}
	}

	return nil
}

func (r *StorageRepo) PublicURL(path string) string {
	return r.publicBaseURL + "/" + strings.TrimLeft(path, "/")
}
