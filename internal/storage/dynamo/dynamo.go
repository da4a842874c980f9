package dynamo

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"cnc-dashboard/internal/config"
	"cnc-dashboard/internal/storage"
)

type Storage struct {
	client *dynamodb.Client
	table  string
}

func New(ctx context.Context, cfg config.Config) (*Storage, error) {
	const op = "storage.dynamo.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		client: dynamodb.NewFromConfig(awsCfg),
		table:  cfg.TableName,
	}, nil
}

// ScanAll reads the whole table, following the pagination token until no page
// remains. The dashboard recomputes from the full history on every read, so
// there is no incremental path and no retry here.
func (s *Storage) ScanAll(ctx context.Context) ([]storage.Item, error) {
	const op = "storage.dynamo.ScanAll"

	var items []storage.Item

	input := &dynamodb.ScanInput{TableName: &s.table}
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		var page []storage.Item
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("%s: unmarshal page: %w", op, err)
		}
		items = append(items, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return items, nil
}
