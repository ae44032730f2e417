// ABOUTME: Tests for the S3 asset store against an in-memory fake of the S3 API
// ABOUTME: Exercises key layout, pagination, not-found mapping and failure classification

package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/fitcheck-studio/internal/faults"
)

// fakeS3 is an in-memory s3API keyed by object key. Listing returns pages of pageSize.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	failGet  error
	lists    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: 2}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++

	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+f.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func newTestS3Store(fake *fakeS3) *S3Store {
	return &S3Store{client: fake, bucket: "test-bucket", prefix: "studio/", logger: slogDiscard()}
}

func TestS3Store_AssetContract(t *testing.T) {
	runAssetStoreContract(t, func(t *testing.T) AssetStore { return newTestS3Store(newFakeS3()) })
}

func TestS3Store_KeyLayout(t *testing.T) {
	fake := newFakeS3()
	s := newTestS3Store(fake)
	ctx := context.Background()

	require.NoError(t, s.SaveAsset(ctx, "asset_render_1_1", "payload"))
	require.NoError(t, s.SaveDescriptor(ctx, &Descriptor{ID: "asset_render_1_1", Kind: "render"}))

	assert.Contains(t, fake.objects, "studio/assets/asset_render_1_1")
	assert.Contains(t, fake.objects, "studio/metadata/asset_render_1_1.json")
	assert.Contains(t, string(fake.objects["studio/metadata/asset_render_1_1.json"]), `"kind":"render"`)
}

func TestS3Store_ListPaginates(t *testing.T) {
	fake := newFakeS3()
	s := newTestS3Store(fake)
	ctx := context.Background()

	for _, id := range []string{"e", "d", "c", "b", "a"} {
		require.NoError(t, s.SaveAsset(ctx, id, "v"))
	}

	keys, err := s.ListAssetKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, keys)
	assert.Equal(t, 3, fake.lists)
}

func TestS3Store_GetFailureIsStorageError(t *testing.T) {
	fake := newFakeS3()
	fake.failGet = errors.New("connection reset")
	s := newTestS3Store(fake)

	_, err := s.GetAsset(context.Background(), "asset_render_1_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, faults.ErrStorage)
	assert.ErrorIs(t, err, fake.failGet)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&types.NoSuchKey{}))
	assert.True(t, isS3NotFound(&types.NotFound{}))
	assert.False(t, isS3NotFound(errors.New("boom")))
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Options{})
	assert.ErrorContains(t, err, "bucket")
}
