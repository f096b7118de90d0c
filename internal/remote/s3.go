// Package remote resolves timestamps for objects in S3 buckets, addressed as
// s3://bucket/key. A "directory" is a key prefix ending in '/'.
package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fresh-go/internal/config"
	"fresh-go/internal/fresh"
	"fresh-go/internal/fs"
)

// Scheme prefixes every S3 path.
const Scheme = "s3://"

// S3API is the subset of the S3 client used by S3Scanner.
type S3API interface {
	s3.ListObjectsV2APIClient
	s3.HeadObjectAPIClient
	manager.DownloadAPIClient
}

// S3Scanner implements fresh.Scanner over S3 buckets.
type S3Scanner struct {
	ctx    context.Context
	client S3API
}

var _ fresh.Scanner = (*S3Scanner)(nil)

// NewS3Scanner creates a scanner using client. ctx bounds every request.
func NewS3Scanner(ctx context.Context, client S3API) *S3Scanner {
	return &S3Scanner{ctx: ctx, client: client}
}

// NewS3ScannerFromConfig builds an S3 client from cfg and the default AWS
// configuration chain.
func NewS3ScannerFromConfig(ctx context.Context, cfg config.S3Config) (*S3Scanner, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3Scanner(ctx, client), nil
}

// IsS3Path returns true if path uses the s3:// scheme.
func IsS3Path(path string) bool {
	return strings.HasPrefix(path, Scheme)
}

// splitPath splits "s3://bucket/key" into bucket and key.
func splitPath(path string) (bucket, key string, err error) {
	if !IsS3Path(path) {
		return "", "", fmt.Errorf("not an s3 path: %s", path)
	}
	rest := strings.TrimPrefix(path, Scheme)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 path has no bucket: %s", path)
	}
	return bucket, key, nil
}

// ScanDirectory lists one level of the prefix named by dir. Objects are
// reported with their LastModified time; sub-prefixes are reported without
// a time.
func (s *S3Scanner) ScanDirectory(dir string, enter fresh.EntryFunc) error {
	bucket, prefix, err := splitPath(dir)
	if err != nil {
		return err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	base := Scheme + bucket + "/"

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(s.ctx)
		if err != nil {
			return fmt.Errorf("listing %s: %w", dir, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Folder marker objects stand for the prefix itself.
			if key == prefix || strings.HasSuffix(key, "/") {
				continue
			}
			if obj.LastModified == nil {
				enter(base+key, false, fresh.Timestamp{})
				continue
			}
			enter(base+key, true, fresh.FromTime(*obj.LastModified))
		}
		for _, cp := range page.CommonPrefixes {
			key := strings.TrimSuffix(aws.ToString(cp.Prefix), "/")
			enter(base+key, false, fresh.Timestamp{})
		}
	}
	return nil
}

// ScanArchive downloads the archive object to a temporary file and reports
// its members.
func (s *S3Scanner) ScanArchive(archive string, enter fresh.EntryFunc) error {
	bucket, key, err := splitPath(archive)
	if err != nil {
		return err
	}
	if !fs.IsArchive(key) {
		return fmt.Errorf("%w: %s", fresh.ErrUnsupportedArchive, archive)
	}

	tmp, err := os.CreateTemp("", "fresh-archive-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = manager.NewDownloader(s.client).Download(s.ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("downloading %s: %w", archive, err)
	}

	return fs.ScanArchiveFile(tmp.Name(), archive, enter)
}

// ProbeTimestamp returns the LastModified time of the object. A member path
// "s3://bucket/lib.a(member)" is timed by its archive object.
func (s *S3Scanner) ProbeTimestamp(path string) (fresh.Timestamp, error) {
	if strings.HasSuffix(path, ")") {
		if open := strings.LastIndexByte(path, '('); open > 0 {
			path = path[:open]
		}
	}
	bucket, key, err := splitPath(path)
	if err != nil {
		return fresh.Timestamp{}, err
	}
	if key == "" {
		return fresh.Timestamp{}, errors.New("bucket has no modification time")
	}

	out, err := s.client.HeadObject(s.ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fresh.Timestamp{}, fmt.Errorf("head %s: %w", path, err)
	}
	if out.LastModified == nil {
		return fresh.Timestamp{}, fmt.Errorf("no modification time for %s", path)
	}
	return fresh.FromTime(*out.LastModified), nil
}
