package mavenrepo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const defaultS3Region = "us-east-1"

// S3Config describes an S3 bucket used as a Maven repository.
type S3Config struct {
	Bucket string
	// Prefix is prepended to every key, such as "maven/releases".
	Prefix string
	Region string
	// Endpoint overrides the AWS endpoint, for S3-compatible stores. Setting it also selects
	// path-style addressing.
	Endpoint string
	// AccessKeyID and SecretAccessKey override the default credential chain if both are set.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Repository publishes artifacts to an S3 bucket in the Maven layout.
type S3Repository struct {
	config   S3Config
	client   *s3.S3
	uploader *s3manager.Uploader
	logger   framework.Logger
	now      func() time.Time
}

// NewS3Repository creates an S3Repository.
func NewS3Repository(config S3Config, logger framework.Logger) (*S3Repository, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("S3 repository needs a bucket")
	}
	if config.Region == "" {
		config.Region = defaultS3Region
	}
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKeyID, config.SecretAccessKey, "")
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("could not create AWS session: %w", err)
	}
	return &S3Repository{
		config:   config,
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		logger:   framework.LoggerOrNull(logger),
		now:      time.Now,
	}, nil
}

func (r *S3Repository) key(slashPath string) string {
	return path.Join(strings.Trim(r.config.Prefix, "/"), slashPath)
}

func (r *S3Repository) Deploy(ctx context.Context, artifact Artifact, data []byte) error {
	if err := artifact.validate(); err != nil {
		return err
	}
	if err := r.putWithChecksums(ctx, artifact.Path(), data); err != nil {
		return fmt.Errorf("could not deploy %s to s3://%s: %w", artifact, r.config.Bucket, err)
	}

	metadataPath := artifact.ArtifactDir() + "/" + metadataFileName
	existing, err := r.get(ctx, metadataPath)
	if err != nil {
		return err
	}
	merged, err := mergeMetadata(existing, artifact, r.now())
	if err != nil {
		return fmt.Errorf("invalid metadata at %s: %w", metadataPath, err)
	}
	return r.putWithChecksums(ctx, metadataPath, merged)
}

func (r *S3Repository) putWithChecksums(ctx context.Context, slashPath string, data []byte) error {
	if err := r.put(ctx, slashPath, data); err != nil {
		return err
	}
	for p, sum := range checksumFiles(slashPath, data) {
		if err := r.put(ctx, p, sum); err != nil {
			return err
		}
	}
	return nil
}

func (r *S3Repository) put(ctx context.Context, slashPath string, data []byte) error {
	key := r.key(slashPath)
	r.logger.Printf("Uploading s3://%s/%s (%d bytes)", r.config.Bucket, key, len(data))
	_, err := r.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(r.config.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	return err
}

// get returns nil data, not an error, if the object does not exist.
func (r *S3Repository) get(ctx context.Context, slashPath string) ([]byte, error) {
	out, err := r.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.config.Bucket),
		Key:    aws.String(r.key(slashPath)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	defer out.Body.Close() //nolint:errcheck
	return io.ReadAll(out.Body)
}

func isS3NotFound(err error) bool {
	if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == http.StatusNotFound { //nolint:errorlint
		return true
	}
	if awsErr, ok := err.(awserr.Error); ok { //nolint:errorlint
		return awsErr.Code() == s3.ErrCodeNoSuchKey
	}
	return false
}
