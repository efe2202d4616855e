package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3api is the minimal subset of the S3 client this package uses; it
// allows test fakes.
type s3api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// newS3Client constructs an S3 client; overridden in tests.
var newS3Client = func(ctx context.Context) (s3api, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// CreateWriter opens the report destination. Bare paths and file:// URIs
// write a local file; s3:// URIs buffer in memory and upload the object on
// Close, so a failed run never leaves a partial object behind.
func CreateWriter(ctx context.Context, uri string) (io.Writer, io.Closer, error) {
	if strings.HasPrefix(uri, "file://") || !strings.Contains(uri, "://") {
		return createFile(strings.TrimPrefix(uri, "file://"))
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("parse output uri: %w", err)
	}
	switch u.Scheme {
	case "s3":
		return createS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// createFile creates a local file, making parent directories as needed.
func createFile(path string) (io.Writer, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// createS3 returns a writer whose Close uploads the buffered object.
func createS3(ctx context.Context, bucket, key string) (io.Writer, io.Closer, error) {
	var buf bytes.Buffer
	done := false
	return &buf, closerFunc(func() error {
		if done {
			return nil
		}
		done = true
		client, err := newS3Client(ctx)
		if err != nil {
			return err
		}
		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(buf.Bytes()),
		})
		return err
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
