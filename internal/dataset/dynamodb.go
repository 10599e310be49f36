package dataset

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// ScanAPI is the part of the DynamoDB client used by DynamoSource
type ScanAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoSource reads the metrics table with a full paginated scan
type DynamoSource struct {
	client ScanAPI
	table  string
	opts   BuildOptions
	logger zerolog.Logger
}

// NewDynamoSource creates a DynamoDB source
func NewDynamoSource(ctx context.Context, cfg SourceConfig, opts BuildOptions, logger zerolog.Logger) (*DynamoSource, error) {
	var client *dynamodb.Client

	if cfg.DynamoMode == DynamoModeLocal {
		// Local mode builds the client directly; LoadDefaultConfig probes the
		// EC2 IMDS endpoint, which hangs when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.DynamoRegion,
			BaseEndpoint: aws.String(cfg.DynamoEndpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.DynamoRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	logger.Info().
		Str("mode", string(cfg.DynamoMode)).
		Str("region", cfg.DynamoRegion).
		Str("table", cfg.DynamoTable).
		Msg("DynamoDB source initialized")

	return NewDynamoSourceWithClient(client, cfg.DynamoTable, opts, logger), nil
}

// NewDynamoSourceWithClient creates a DynamoDB source on an existing client
func NewDynamoSourceWithClient(client ScanAPI, table string, opts BuildOptions, logger zerolog.Logger) *DynamoSource {
	return &DynamoSource{client: client, table: table, opts: opts, logger: logger}
}

// Name implements Source
func (s *DynamoSource) Name() string { return "dynamodb:" + s.table }

// Load implements Source
func (s *DynamoSource) Load(ctx context.Context) (*Table, error) {
	var (
		items   []map[string]interface{}
		lastKey map[string]dbtypes.AttributeValue
	)

	for {
		input := &dynamodb.ScanInput{
			TableName: aws.String(s.table),
			Limit:     aws.Int32(1000),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
		}

		var page []map[string]interface{}
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metric rows: %w", err)
		}
		items = append(items, page...)

		if s.opts.MaxRows > 0 && len(items) > s.opts.MaxRows {
			return nil, fmt.Errorf("dataset has more than %d rows", s.opts.MaxRows)
		}

		lastKey = result.LastEvaluatedKey
		if len(lastKey) == 0 {
			break
		}
	}

	table, err := BuildTable(itemsToRows(items), s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build table from %s: %w", s.table, err)
	}

	s.logger.Info().
		Str("table", s.table).
		Int("rows", table.Len()).
		Msg("DynamoDB table loaded")

	return table, nil
}

// itemsToRows flattens items into a sorted header union; scan order is
// preserved for the rows
func itemsToRows(items []map[string]interface{}) RawRows {
	seen := make(map[string]bool)
	var headers []string
	for _, item := range items {
		for k := range item {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = cellString(item[h])
		}
		rows = append(rows, row)
	}

	return RawRows{Headers: headers, Rows: rows}
}

// cellString renders a decoded attribute or SQL value as cell text
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
