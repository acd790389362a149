package minio

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ledgerdb/blobstore"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key, opts.Header().Get("Range"))
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *mockClient) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, bucket, key, string(data))
	return minio.UploadInfo{}, args.Error(0)
}

func (m *mockClient) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucket, opts.Prefix)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

func TestOpenAndRead(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "raw")
	ctx := context.Background()

	c.On("StatObject", mock.Anything, "bucket", "raw/tx.csv").
		Return(minio.ObjectInfo{Size: 11}, nil).Once()
	c.On("GetObject", mock.Anything, "bucket", "raw/tx.csv", "bytes=0-10").
		Return(io.NopCloser(strings.NewReader("hello world")), nil).Once()

	r, err := blobstore.OpenReader(ctx, s, "tx.csv")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
	require.NoError(t, r.Close())
	c.AssertExpectations(t)
}

func TestOpenNotFound(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "")

	c.On("StatObject", mock.Anything, "bucket", "nope").
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}).Once()

	_, err := s.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestList(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "raw/")

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "raw/b.csv"}
	ch <- minio.ObjectInfo{Key: "raw/a.csv"}
	close(ch)
	c.On("ListObjects", mock.Anything, "bucket", "raw").Return((<-chan minio.ObjectInfo)(ch)).Once()

	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, names)
}

func TestPutAndCreate(t *testing.T) {
	c := new(mockClient)
	s := NewStore(c, "bucket", "out")
	ctx := context.Background()

	c.On("PutObject", mock.Anything, "bucket", "out/a.csv", "abc").Return(nil).Once()
	c.On("PutObject", mock.Anything, "bucket", "out/b.csv", "streamed").Return(nil).Once()

	require.NoError(t, s.Put(ctx, "a.csv", []byte("abc")))

	w, err := s.Create(ctx, "b.csv")
	require.NoError(t, err)
	_, err = io.WriteString(w, "streamed")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Error(t, w.Close())
	c.AssertExpectations(t)
}
