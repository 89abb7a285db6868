package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in      *s3.PutObjectInput
	body    string
	err     error
	headErr error
	heads   int
}

func (f *fakePutter) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.heads++
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink_Put(t *testing.T) {
	fake := &fakePutter{}
	s := &S3Sink{client: fake, bucket: "results", key: "tower-a/run.csv"}

	require.NoError(t, s.Put(context.Background(), []byte("unit,name,psk,status\n")))

	assert.Equal(t, "results", *fake.in.Bucket)
	assert.Equal(t, "tower-a/run.csv", *fake.in.Key)
	assert.Equal(t, "text/csv", *fake.in.ContentType)
	assert.Equal(t, "unit,name,psk,status\n", fake.body)
	assert.Equal(t, "s3://results/tower-a/run.csv", s.String())
}

func TestS3Sink_NoSuchBucket(t *testing.T) {
	s := &S3Sink{client: &fakePutter{err: &types.NoSuchBucket{}}, bucket: "gone", key: "k"}

	err := s.Put(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone does not exist")
}

func TestS3Sink_OtherError(t *testing.T) {
	s := &S3Sink{client: &fakePutter{err: errors.New("timeout")}, bucket: "b", key: "k"}

	err := s.Put(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to upload s3://b/k"))
}

func TestS3Sink_Check(t *testing.T) {
	fake := &fakePutter{}
	s := &S3Sink{client: fake, bucket: "results", key: "k"}
	require.NoError(t, s.Check(context.Background()))
	assert.Equal(t, 1, fake.heads)
	assert.Nil(t, fake.in, "Check must not upload")

	s = &S3Sink{client: &fakePutter{headErr: &types.NotFound{}}, bucket: "gone", key: "k"}
	err := s.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone does not exist")

	s = &S3Sink{client: &fakePutter{headErr: errors.New("403 Forbidden")}, bucket: "b", key: "k"}
	err = s.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach bucket b")
}

func TestNewS3Sink_RequiresBucketAndKey(t *testing.T) {
	_, err := NewS3Sink(context.Background(), S3Options{Region: "us-east-1"}, "k")
	assert.Error(t, err)

	_, err = NewS3Sink(context.Background(), S3Options{Bucket: "b", Region: "us-east-1"}, "")
	assert.Error(t, err)
}

func TestNewS3Sink_StaticCredentials(t *testing.T) {
	s, err := NewS3Sink(context.Background(), S3Options{
		Endpoint:  "http://127.0.0.1:9000",
		Region:    "us-east-1",
		Bucket:    "b",
		AccessKey: "ak",
		SecretKey: "sk",
	}, "k")
	require.NoError(t, err)
	assert.Equal(t, "s3://b/k", s.String())
}
