package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockS3 struct {
	mock.Mock
}

func (m *MockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func TestImageStorePut(t *testing.T) {
	t.Run("Should upload and return the public URL", func(t *testing.T) {
		client := new(MockS3)
		store := NewImageStore(client, Config{Bucket: "imgs", Region: "eu-west-1"})

		client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			body, _ := io.ReadAll(in.Body)
			return aws.ToString(in.Bucket) == "imgs" &&
				aws.ToString(in.Key) == "profile-images/u1/a.jpg" &&
				aws.ToString(in.ContentType) == "image/jpeg" &&
				string(body) == "jpeg-bytes"
		})).Return(&s3.PutObjectOutput{}, nil)

		url, err := store.Put(context.Background(), "profile-images/u1/a.jpg", "image/jpeg", []byte("jpeg-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "https://imgs.s3.eu-west-1.amazonaws.com/profile-images/u1/a.jpg", url)
		client.AssertExpectations(t)
	})

	t.Run("Should wrap storage errors", func(t *testing.T) {
		client := new(MockS3)
		store := NewImageStore(client, Config{Bucket: "imgs"})
		client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

		_, err := store.Put(context.Background(), "k.jpg", "image/jpeg", []byte("x"))
		assert.ErrorContains(t, err, "denied")
	})
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.jobby.dev", publicBaseURL(Config{PublicBaseURL: "https://cdn.jobby.dev/"}))
	assert.Equal(t, "https://s3.eu-central-1.wasabisys.com/b",
		publicBaseURL(Config{Provider: ProviderWasabi, Region: "eu-central-1", Bucket: "b"}))
}
