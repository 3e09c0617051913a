package resultstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// Schema of the DynamoDB table
	tablePartitionKey = "namespace"
	tableSortKey      = "key"
	itemJSONAttribute = "item"

	// BatchWriteItem accepts at most this many requests
	dynamoDBMaxBatch = 25
)

// DynamoDBConfig locates the table. Credentials come from the usual AWS environment.
type DynamoDBConfig struct {
	Table     string
	Region    string
	Endpoint  string
	Namespace string
}

// DynamoDBStore keeps one item per suppressed test in partition <namespace>:suppressions and one
// per run in <namespace>:runs. The table must already exist with a string partition key
// "namespace" and a string sort key "key".
type DynamoDBStore struct {
	client    *dynamodb.Client
	table     string
	namespace string
}

func NewDynamoDBStore(ctx context.Context, config DynamoDBConfig) (*DynamoDBStore, error) {
	if config.Table == "" {
		return nil, fmt.Errorf("DynamoDB table name is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot load AWS configuration: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &DynamoDBStore{client: client, table: config.Table, namespace: namespace}, nil
}

func (d *DynamoDBStore) suppressionsPartition() string { return d.namespace + ":suppressions" }
func (d *DynamoDBStore) runsPartition() string         { return d.namespace + ":runs" }

// queryPartition returns the items of one partition in sort key order.
func (d *DynamoDBStore) queryPartition(ctx context.Context, partition string) ([]map[string]types.AttributeValue, error) {
	paginator := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		ConsistentRead:         aws.Bool(true),
		KeyConditionExpression: aws.String("#ns = :ns"),
		ExpressionAttributeNames: map[string]string{
			"#ns": tablePartitionKey,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ns": &types.AttributeValueMemberS{Value: partition},
		},
	})
	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (d *DynamoDBStore) LoadSuppressions(ctx context.Context) ([]string, error) {
	items, err := d.queryPartition(ctx, d.suppressionsPartition())
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item[itemJSONAttribute].(*types.AttributeValueMemberS); ok {
			lines = append(lines, s.Value)
		}
	}
	return cleanSuppressions(lines), nil
}

func (d *DynamoDBStore) RecordRun(ctx context.Context, run RunRecord) error {
	existing, err := d.queryPartition(ctx, d.suppressionsPartition())
	if err != nil {
		return err
	}
	unusedKeys := make(map[string]bool)
	for _, item := range existing {
		if s, ok := item[tableSortKey].(*types.AttributeValueMemberS); ok {
			unusedKeys[s.Value] = true
		}
	}

	var requests []types.WriteRequest
	for i, id := range run.Failures {
		key := fmt.Sprintf("%06d", i)
		requests = append(requests, putRequest(d.suppressionsPartition(), key, id))
		delete(unusedKeys, key)
	}
	for key := range unusedKeys {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
				tablePartitionKey: &types.AttributeValueMemberS{Value: d.suppressionsPartition()},
				tableSortKey:      &types.AttributeValueMemberS{Value: key},
			}},
		})
	}
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	requests = append(requests, putRequest(d.runsPartition(), run.ID, string(data)))

	if err := d.batchWriteRequests(ctx, requests); err != nil {
		return fmt.Errorf("failed to write %d items(s) in batches: %w", len(requests), err)
	}
	return nil
}

func putRequest(partition, key, value string) types.WriteRequest {
	return types.WriteRequest{
		PutRequest: &types.PutRequest{Item: map[string]types.AttributeValue{
			tablePartitionKey: &types.AttributeValueMemberS{Value: partition},
			tableSortKey:      &types.AttributeValueMemberS{Value: key},
			itemJSONAttribute: &types.AttributeValueMemberS{Value: value},
		}},
	}
}

// batchWriteRequests executes the requests in batches of the maximum size, resubmitting whatever
// the service reports as unprocessed.
func (d *DynamoDBStore) batchWriteRequests(ctx context.Context, requests []types.WriteRequest) error {
	for len(requests) > 0 {
		batchSize := min(len(requests), dynamoDBMaxBatch)
		batch := requests[:batchSize]
		requests = requests[batchSize:]

		out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{d.table: batch},
		})
		if err != nil {
			return err
		}
		requests = append(requests, out.UnprocessedItems[d.table]...)
	}
	return nil
}

func (d *DynamoDBStore) Close() error { return nil }
