package dataset

import (
	"os"
	"strings"
)

// SourceKind selects where the metrics table is read from
type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceDynamo SourceKind = "dynamodb"
	SourceSQLite SourceKind = "sqlite"
)

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local"
	DynamoModeAWS   DynamoMode = "aws"
)

// SourceConfig holds the data source configuration
type SourceConfig struct {
	Kind SourceKind

	// file source
	FilePath string
	Sheet    string

	// sqlite source
	SQLitePath  string
	SQLiteTable string

	// dynamodb source
	DynamoMode     DynamoMode
	DynamoEndpoint string // for local mode
	DynamoRegion   string
	DynamoTable    string
}

// LoadSourceConfig loads the data source config from environment
func LoadSourceConfig() SourceConfig {
	kind := SourceKind(strings.ToLower(getEnv("DATA_SOURCE", string(SourceFile))))
	if kind != SourceDynamo && kind != SourceSQLite {
		kind = SourceFile
	}

	mode := DynamoMode(getEnv("DYNAMO_MODE", string(DynamoModeAWS)))
	if mode != DynamoModeLocal {
		mode = DynamoModeAWS
	}

	return SourceConfig{
		Kind:           kind,
		FilePath:       getEnv("DATA_FILE", "ejemplo.xlsx"),
		Sheet:          os.Getenv("DATA_SHEET"),
		SQLitePath:     getEnv("SQLITE_PATH", "metrics.db"),
		SQLiteTable:    getEnv("SQLITE_TABLE", "metricas"),
		DynamoMode:     mode,
		DynamoEndpoint: getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		DynamoRegion:   getEnv("DYNAMO_REGION", "eu-central-1"),
		DynamoTable:    getEnv("DYNAMO_METRICS_TABLE", "agent-metrics"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
