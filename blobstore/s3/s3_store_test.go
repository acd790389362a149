package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ledgerdb/blobstore"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.CreateMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockClient) UploadPart(ctx context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.UploadPartOutput)
	return out, args.Error(1)
}

func (m *mockClient) CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.CompleteMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockClient) AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.AbortMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockClient) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func keyIs(bucket, key string) any {
	return mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Bucket) == bucket && aws.ToString(in.Key) == key
	})
}

func TestOpen(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "prefix")
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		c.On("HeadObject", mock.Anything, keyIs("bucket", "prefix/foo")).
			Return(nil, &types.NotFound{}).Once()
		_, err := s.Open(ctx, "foo")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("read", func(t *testing.T) {
		c.On("HeadObject", mock.Anything, keyIs("bucket", "prefix/bar")).
			Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(10)}, nil).Once()
		c.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
			return aws.ToString(in.Key) == "prefix/bar" && aws.ToString(in.Range) == "bytes=2-6"
		})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("llo W"))}, nil).Once()

		b, err := s.Open(ctx, "bar")
		require.NoError(t, err)
		assert.Equal(t, int64(10), b.Size())

		rc, err := b.ReadRange(ctx, 2, 5)
		require.NoError(t, err)
		defer rc.Close()
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "llo W", string(got))

		rc, err = b.ReadRange(ctx, 10, 5)
		require.NoError(t, err)
		got, err = io.ReadAll(rc)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
	c.AssertExpectations(t)
}

func TestListPagination(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "prefix/")

	c.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil && aws.ToString(in.Prefix) == "prefix"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token"),
		Contents:              []types.Object{{Key: aws.String("prefix/b.csv")}},
	}, nil).Once()
	c.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "token"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("prefix/a.csv")}},
	}, nil).Once()

	keys, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, keys)
	c.AssertExpectations(t)
}

func TestCreate(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "out")

	var body string
	c.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "out/gen.csv"
	})).Run(func(args mock.Arguments) {
		data, _ := io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
		body = string(data)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	w, err := s.Create(context.Background(), "gen.csv")
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n1,2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), io.ErrClosedPipe)
	assert.Equal(t, "a,b\n1,2\n", body)
	c.AssertExpectations(t)
}

func TestCreateMultipart(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "out", WithPartSize(5<<20), WithConcurrency(2))

	var uploaded atomic.Int64
	c.On("CreateMultipartUpload", mock.Anything, mock.MatchedBy(func(in *s3.CreateMultipartUploadInput) bool {
		return aws.ToString(in.Key) == "out/big.csv"
	})).Return(&s3.CreateMultipartUploadOutput{UploadId: aws.String("up-1")}, nil).Once()
	c.On("UploadPart", mock.Anything, mock.MatchedBy(func(in *s3.UploadPartInput) bool {
		return aws.ToString(in.UploadId) == "up-1"
	})).Run(func(args mock.Arguments) {
		n, _ := io.Copy(io.Discard, args.Get(1).(*s3.UploadPartInput).Body)
		uploaded.Add(n)
	}).Return(&s3.UploadPartOutput{ETag: aws.String("etag")}, nil).Twice()
	c.On("CompleteMultipartUpload", mock.Anything, mock.MatchedBy(func(in *s3.CompleteMultipartUploadInput) bool {
		return aws.ToString(in.UploadId) == "up-1" && len(in.MultipartUpload.Parts) == 2
	})).Return(&s3.CompleteMultipartUploadOutput{}, nil).Once()

	w, err := s.Create(context.Background(), "big.csv")
	require.NoError(t, err)
	chunk := bytes.Repeat([]byte("x"), 64<<10)
	total := int64(0)
	for total < 5<<20+10 {
		n, err := w.Write(chunk)
		require.NoError(t, err)
		total += int64(n)
	}
	require.NoError(t, w.Close())
	assert.Equal(t, total, uploaded.Load())
	c.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
	c.AssertExpectations(t)
}

func TestCreateUploadError(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "out")

	c.On("PutObject", mock.Anything, mock.Anything).
		Return(nil, errors.New("access denied")).Once()

	w, err := s.Create(context.Background(), "gen.csv")
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n")
	require.NoError(t, err)
	err = w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
