// ABOUTME: S3-compatible AssetStore using aws-sdk-go-v2 (AWS S3 or MinIO)
// ABOUTME: Payloads live under assets/ and JSON descriptors under metadata/ in one bucket

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/2389/fitcheck-studio/internal/faults"
)

const (
	s3AssetsDir   = "assets/"
	s3MetadataDir = "metadata/"
)

// s3API is the subset of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options holds construction parameters for NewS3Store.
type S3Options struct {
	Bucket          string
	Region          string // default us-east-1
	Endpoint        string // optional; set for MinIO and other S3-compatible servers
	PathStyle       bool
	Prefix          string // optional key prefix, e.g. "fitcheck/"
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string
}

// S3Store implements AssetStore on a single bucket.
// ClearObsolete is not atomic; a failure part way leaves the remaining keys in place.
type S3Store struct {
	client s3API
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Store creates an S3 asset store.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	logger := slog.Default().With("component", "store")
	logger.Info("S3 store initialized", "bucket", opts.Bucket, "endpoint", opts.Endpoint, "prefix", opts.Prefix)

	return &S3Store{client: client, bucket: opts.Bucket, prefix: opts.Prefix, logger: logger}, nil
}

func (s *S3Store) assetKey(id string) string {
	return s.prefix + s3AssetsDir + id
}

func (s *S3Store) descriptorKey(id string) string {
	return s.prefix + s3MetadataDir + id + ".json"
}

// SaveAsset writes or overwrites a payload object.
func (s *S3Store) SaveAsset(ctx context.Context, id, payload string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.assetKey(id)),
		Body:        strings.NewReader(payload),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return faults.Storage("save asset", fmt.Errorf("putting %s: %w", id, err))
	}
	s.logger.Debug("saved asset", "asset_id", id, "size", len(payload))
	return nil
}

// GetAsset returns the payload object for id.
// Returns ErrNotFound if the object doesn't exist.
func (s *S3Store) GetAsset(ctx context.Context, id string) (string, error) {
	data, err := s.getObject(ctx, s.assetKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", faults.Storage("get asset", fmt.Errorf("getting %s: %w", id, err))
	}
	return string(data), nil
}

func (s *S3Store) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

// DeleteAsset removes the payload and descriptor objects for id.
func (s *S3Store) DeleteAsset(ctx context.Context, id string) error {
	for _, key := range []string{s.assetKey(id), s.descriptorKey(id)} {
		if err := s.deleteObject(ctx, key); err != nil {
			return faults.Storage("delete asset", fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return nil
}

func (s *S3Store) deleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil && !isS3NotFound(err) {
		return err
	}
	return nil
}

// ListAssetKeys returns every asset id in ascending order.
func (s *S3Store) ListAssetKeys(ctx context.Context) ([]string, error) {
	keys, err := s.listKeys(ctx, s.prefix+s3AssetsDir)
	if err != nil {
		return nil, faults.Storage("list assets", err)
	}
	return keys, nil
}

// listKeys returns the object keys under prefix with the prefix stripped.
func (s *S3Store) listKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearObsolete deletes every asset and descriptor not in active, one object
// at a time.
func (s *S3Store) ClearObsolete(ctx context.Context, active map[string]struct{}) (int, error) {
	keys, err := s.listKeys(ctx, s.prefix+s3AssetsDir)
	if err != nil {
		return 0, faults.Storage("clear obsolete", err)
	}

	removed := 0
	for _, id := range keys {
		if _, keep := active[id]; keep {
			continue
		}
		if err := s.DeleteAsset(ctx, id); err != nil {
			return removed, faults.Storage("clear obsolete", err)
		}
		removed++
	}

	names, err := s.listKeys(ctx, s.prefix+s3MetadataDir)
	if err != nil {
		return removed, faults.Storage("clear obsolete", err)
	}
	stale := 0
	for _, name := range names {
		id := strings.TrimSuffix(name, ".json")
		if _, keep := active[id]; keep {
			continue
		}
		if err := s.deleteObject(ctx, s.descriptorKey(id)); err != nil {
			return removed, faults.Storage("clear obsolete", fmt.Errorf("deleting descriptor %s: %w", id, err))
		}
		stale++
	}

	s.logger.Info("cleared obsolete assets", "removed", removed, "descriptors", stale, "active", len(active))
	return removed, nil
}

// SaveDescriptor writes d as a JSON object.
func (s *S3Store) SaveDescriptor(ctx context.Context, d *Descriptor) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.descriptorKey(d.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return faults.Storage("save descriptor", fmt.Errorf("putting descriptor %s: %w", d.ID, err))
	}
	return nil
}

// GetDescriptor reads the descriptor for id.
// Returns ErrNotFound if it doesn't exist.
func (s *S3Store) GetDescriptor(ctx context.Context, id string) (*Descriptor, error) {
	data, err := s.getObject(ctx, s.descriptorKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, faults.Storage("get descriptor", fmt.Errorf("getting descriptor %s: %w", id, err))
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, faults.Storage("get descriptor", fmt.Errorf("decoding descriptor %s: %w", id, err))
	}
	return &d, nil
}

// ListDescriptors reads every descriptor, ordered by id.
func (s *S3Store) ListDescriptors(ctx context.Context) ([]*Descriptor, error) {
	names, err := s.listKeys(ctx, s.prefix+s3MetadataDir)
	if err != nil {
		return nil, faults.Storage("list descriptors", err)
	}

	var out []*Descriptor
	for _, name := range names {
		d, err := s.GetDescriptor(ctx, strings.TrimSuffix(name, ".json"))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// DeleteDescriptor removes the descriptor object for id.
func (s *S3Store) DeleteDescriptor(ctx context.Context, id string) error {
	if err := s.deleteObject(ctx, s.descriptorKey(id)); err != nil {
		return faults.Storage("delete descriptor", fmt.Errorf("deleting descriptor %s: %w", id, err))
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *S3Store) Close() error {
	return nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

var _ AssetStore = (*S3Store)(nil)
