package s3store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"news-summarizer/internal/domain"
)

const (
	markdownContentType = "text/markdown; charset=utf-8"
	maxNameAttempts     = 5
)

// ErrObjectExists is returned when every candidate key for a document is
// already taken in the bucket.
var ErrObjectExists = errors.New("s3store: object already exists")

// s3API is the minimal S3 interface required by Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Store writes summary documents into a bucket under an optional key prefix.
type Store struct {
	api    s3API
	bucket string
	prefix string
	region string
}

// New creates a Store. region is only used when the bucket has to be created.
func New(api s3API, bucket, prefix, region string) (*Store, error) {
	if api == nil {
		return nil, errors.New("s3store: api must not be nil")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("s3store: bucket must not be empty")
	}
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{api: api, bucket: bucket, prefix: prefix, region: region}, nil
}

func (s *Store) objectKey(name string) string {
	return s.prefix + name
}

// Write uploads doc as a Markdown object named after doc.Name. Existing
// objects are never replaced: on a name collision the document is written
// under <name>_2, <name>_3 and so on.
func (s *Store) Write(ctx context.Context, doc domain.SummaryDocument) error {
	if strings.TrimSpace(doc.Name) == "" {
		return errors.New("s3store: Write: document name is required")
	}
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := suffixedName(doc.Name, attempt)
		in := &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.objectKey(name)),
			Body:        strings.NewReader(doc.Body),
			ContentType: aws.String(markdownContentType),
			IfNoneMatch: aws.String("*"),
		}
		_, err := s.api.PutObject(ctx, in)
		if err == nil {
			return nil
		}
		if !isPreconditionFailed(err) {
			return fmt.Errorf("s3store: Write %q: %w", name, err)
		}
	}
	return fmt.Errorf("%w: %q", ErrObjectExists, doc.Name)
}

func suffixedName(name string, attempt int) string {
	if attempt <= 1 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), attempt, ext)
}

// isPreconditionFailed reports whether S3 rejected a conditional write
// because the key already exists.
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed"
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("s3store: EnsureBucket head: %w", err)
	}

	in := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	// us-east-1 rejects an explicit location constraint.
	if s.region != "" && s.region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.api.CreateBucket(ctx, in); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("s3store: EnsureBucket create: %w", err)
	}
	return nil
}
