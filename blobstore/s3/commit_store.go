package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/songsight/blobstore"
)

// CurrentName is the blob name whose writes CommitStore routes to DynamoDB.
const CurrentName = "CURRENT"

// ErrConcurrentModification is returned when another writer committed the
// same CURRENT version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// Compile-time check to ensure CommitStore satisfies blobstore.Store.
var _ blobstore.Store = (*CommitStore)(nil)

// DDBClient is the subset of the DynamoDB API used by CommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// CommitStore is a blobstore.Store backed by S3 that keeps the CURRENT
// manifest in DynamoDB. Every CURRENT write appends a new version with a
// conditional put, so two writers never silently overwrite each other.
//
// Table schema:
//   - Partition key: base_uri (string) - the S3 bucket and prefix
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name songsight-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitStore struct {
	blobs     *Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// NewCommitStore creates a new S3+DynamoDB commit store.
func NewCommitStore(blobs *Store, ddbClient DDBClient, tableName string) *CommitStore {
	return &CommitStore{
		blobs:     blobs,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   "s3://" + path.Join(blobs.bucket, blobs.prefix),
	}
}

// NewWithCommits loads the default AWS configuration once and creates a
// CommitStore over bucket and tableName.
func NewWithCommits(ctx context.Context, bucket, tableName string, optFns ...func(o *Options)) (*CommitStore, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	blobs := NewStore(newClient(cfg, opts), bucket, opts.Prefix, opts.Upload)
	return NewCommitStore(blobs, dynamodb.NewFromConfig(cfg), tableName), nil
}

// Get reads a blob. CURRENT resolves to the latest committed version.
func (s *CommitStore) Get(ctx context.Context, name string) ([]byte, error) {
	if name != CurrentName {
		return s.blobs.Get(ctx, name)
	}

	version, content, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return content, nil
}

// Put writes a blob. CURRENT is committed as the next version.
func (s *CommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != CurrentName {
		return s.blobs.Put(ctx, name, data)
	}
	return s.commit(ctx, data)
}

// Delete removes a blob. CURRENT history is never deleted.
func (s *CommitStore) Delete(ctx context.Context, name string) error {
	if name == CurrentName {
		return nil
	}
	return s.blobs.Delete(ctx, name)
}

// List lists S3 blobs with prefix.
func (s *CommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.blobs.List(ctx, prefix)
}

// latest queries DynamoDB for the latest committed version.
func (s *CommitStore) latest(ctx context.Context) (uint64, []byte, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, nil, nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, nil, errors.New("invalid version attribute in DynamoDB")
	}
	contentAttr, ok := item["content"].(*types.AttributeValueMemberB)
	if !ok {
		return 0, nil, errors.New("invalid content attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse version: %w", err)
	}

	return version, contentAttr.Value, nil
}

// commit writes content as the next version using a conditional put.
func (s *CommitStore) commit(ctx context.Context, content []byte) error {
	current, _, err := s.latest(ctx)
	if err != nil {
		return err
	}

	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.baseURI},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(current+1, 10)},
			"content":  &types.AttributeValueMemberB{Value: content},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}

	return nil
}
