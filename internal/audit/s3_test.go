package audit

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubS3(t *testing.T) (opts *s3.Options, in **s3.PutObjectInput, body *string) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPut := putObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
	})

	opts = &s3.Options{}
	in = new(*s3.PutObjectInput)
	body = new(string)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		if lo.Region != "ap-south-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		if lo.Credentials == nil {
			t.Fatalf("static credentials not applied")
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(opts)
		}
		return &s3.Client{}
	}
	putObject = func(c *s3.Client, ctx context.Context, pin *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		*in = pin
		b, err := io.ReadAll(pin.Body)
		require.NoError(t, err)
		*body = string(b)
		return &s3.PutObjectOutput{}, nil
	}
	return opts, in, body
}

func newS3Exporter() *S3Exporter {
	return &S3Exporter{
		Bucket:    "tripti",
		Region:    "ap-south-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}
}

func TestS3Exporter_Export(t *testing.T) {
	opts, in, body := stubS3(t)

	loc, err := newS3Exporter().Export(context.Background(), "audit/a.jsonl", strings.NewReader("line\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3://tripti/audit/a.jsonl", loc)

	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	require.NotNil(t, *in)
	assert.Equal(t, "tripti", aws.ToString((*in).Bucket))
	assert.Equal(t, "audit/a.jsonl", aws.ToString((*in).Key))
	assert.Equal(t, "line\n", *body)
}

func TestS3Exporter_NoEndpointKeepsVirtualHosting(t *testing.T) {
	opts, _, _ := stubS3(t)

	e := newS3Exporter()
	e.Endpoint = ""
	_, err := e.Export(context.Background(), "k", strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, opts.BaseEndpoint)
	assert.False(t, opts.UsePathStyle)
}

func TestS3Exporter_Errors(t *testing.T) {
	stubS3(t)

	_, err := (&S3Exporter{}).Export(context.Background(), "k", strings.NewReader(""))
	require.ErrorContains(t, err, "bucket is not set")

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err = newS3Exporter().Export(context.Background(), "k", strings.NewReader(""))
	require.ErrorContains(t, err, "load aws config")
}

func TestS3Exporter_PutError(t *testing.T) {
	stubS3(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("access denied")
	}

	_, err := newS3Exporter().Export(context.Background(), "audit/a.jsonl", strings.NewReader(""))
	require.ErrorContains(t, err, "put s3://tripti/audit/a.jsonl")
	require.ErrorContains(t, err, "access denied")
}
