package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublic_URL(t *testing.T) {
	p := Public{BaseURL: "https://cdn.example.com/"}
	assert.Equal(t, "https://cdn.example.com/products/valve.jpg", p.URL(context.Background(), "/products/valve.jpg"))
	assert.Equal(t, "", p.URL(context.Background(), ""))
}

type fakeSigner struct {
	gotKey    string
	gotBucket string
	err       error
}

func (f *fakeSigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*presignedURL, error) {
	f.gotKey = aws.ToString(in.Key)
	f.gotBucket = aws.ToString(in.Bucket)
	if f.err != nil {
		return nil, f.err
	}
	return &presignedURL{URL: "https://signed/" + f.gotKey}, nil
}

func TestS3_URL(t *testing.T) {
	fs := &fakeSigner{}
	s := &S3{bucket: "catalog", expires: time.Minute, signer: fs}

	assert.Equal(t, "https://signed/boilers/combi.png", s.URL(context.Background(), "/boilers/combi.png"))
	assert.Equal(t, "catalog", fs.gotBucket)
	assert.Equal(t, "", s.URL(context.Background(), ""))

	fs.err = errors.New("expired creds")
	assert.Equal(t, "", s.URL(context.Background(), "x.png"))
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Options{})
	require.Error(t, err)
}
