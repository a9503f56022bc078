// Package repository provides database-backed storage for benchmark run
// history: one row per bench summary a `run` invocation produced, queried
// back by the `history` and `report` CLI subcommands.
package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// HistoryRun represents the benchmark_runs table: one row per bench
// summary a run produced.
type HistoryRun struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID           string    `gorm:"column:run_id;type:varchar(64);index"`
	ModulePath      string    `gorm:"column:module_path;type:varchar(256);index"`
	FunctionName    string    `gorm:"column:function_name;type:varchar(256);index"`
	BenchID         *string   `gorm:"column:bench_id;type:varchar(128)"`
	Kind            string    `gorm:"column:kind;type:varchar(32)"`
	Tool            string    `gorm:"column:tool;type:varchar(32)"`
	HasRegressions  bool      `gorm:"column:has_regressions;index"`
	RegressionCount int       `gorm:"column:regression_count"`
	Summary         JSONField `gorm:"column:summary;type:json"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

// TableName returns the table name for HistoryRun.
func (HistoryRun) TableName() string {
	return "benchmark_runs"
}

// JSONField is a custom type for handling JSON columns in GORM, carried
// over from the teacher's own JSONField for the same role.
type JSONField []byte

// Value implements driver.Valuer.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// MarshalJSON implements json.Marshaler.
func (j JSONField) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSONField) UnmarshalJSON(data []byte) error {
	if data == nil || string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// Decode unmarshals the stored summary JSON into dest.
func (j JSONField) Decode(dest interface{}) error {
	if j == nil {
		return nil
	}
	return json.Unmarshal(j, dest)
}
