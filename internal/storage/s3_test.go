package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

type fakeObjects struct {
	objects     map[string][]byte
	types       map[string]string
	bucketErr   error
	createCalls int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.bucketErr
}

func (f *fakeObjects) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalls++
	return &s3.CreateBucketOutput{}, nil
}

func TestPutJSON(t *testing.T) {
	fake := newFakeObjects()
	c := &S3Client{client: fake, bucket: "archive"}
	ctx := context.Background()

	require.NoError(t, c.PutJSON(ctx, "chunks/c1.json", []map[string]int{{"index": 0}}))
	assert.JSONEq(t, `[{"index":0}]`, string(fake.objects["chunks/c1.json"]))
	assert.Equal(t, "application/json", fake.types["chunks/c1.json"])

	raw := json.RawMessage(`{"decision":"yes"}`)
	require.NoError(t, c.PutJSON(ctx, "evaluations/c1/e1.json", raw))
	assert.Equal(t, `{"decision":"yes"}`, string(fake.objects["evaluations/c1/e1.json"]))

	var back map[string]string
	require.NoError(t, c.GetJSON(ctx, "evaluations/c1/e1.json", &back))
	assert.Equal(t, "yes", back["decision"])

	assert.Error(t, c.PutJSON(ctx, "bad.json", make(chan int)))
	assert.ErrorIs(t, c.GetJSON(ctx, "missing.json", &back), domain.ErrArchiveNotFound)
}

func TestEnsureBucket(t *testing.T) {
	fake := newFakeObjects()
	c := &S3Client{client: fake, bucket: "archive"}
	require.NoError(t, c.EnsureBucket(context.Background()))
	assert.Zero(t, fake.createCalls)

	fake.bucketErr = errors.New("NotFound")
	require.NoError(t, c.EnsureBucket(context.Background()))
	assert.Equal(t, 1, fake.createCalls)
}

func TestGenerateDownloadURL_WithoutPresigner(t *testing.T) {
	c := &S3Client{client: newFakeObjects(), bucket: "archive"}
	_, err := c.GenerateDownloadURL(context.Background(), "k")
	assert.Error(t, err)
}
