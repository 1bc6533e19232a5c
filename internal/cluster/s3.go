package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	log "github.com/sirupsen/logrus"

	"github.com/kubeprov/kubeprov/internal/config"
)

// stateObjectAPI is the slice of the S3 API used for state cleanup.
type stateObjectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// newStateClient builds the S3 client for the configured state store.
// Swappable in tests.
var newStateClient = func(ctx context.Context, st config.StateConfig) (stateObjectAPI, error) {
	region := st.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if st.AccessKey != "" && st.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(st.AccessKey, st.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if st.Endpoint != "" {
			o.BaseEndpoint = aws.String(st.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// cleanupStateObjects removes the cluster's objects from the remote-state
// bucket. Objects are keyed by cluster name prefix: <cluster>/...
func cleanupStateObjects(ctx context.Context, st config.StateConfig, clusterName string) error {
	client, err := newStateClient(ctx, st)
	if err != nil {
		return err
	}

	prefix := clusterName + "/"
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(st.Bucket),
		Prefix: aws.String(prefix),
	}

	paginator := s3.NewListObjectsV2Paginator(client, in)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			// A missing bucket means there is nothing to clean up.
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
				return nil
			}
			return fmt.Errorf("failed to list state objects: %w", err)
		}

		for _, obj := range page.Contents {
			log.WithField("key", aws.ToString(obj.Key)).Debug("Deleting state object")
			_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(st.Bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return fmt.Errorf("failed to delete state object %s: %w", aws.ToString(obj.Key), err)
			}
		}
	}

	return nil
}
