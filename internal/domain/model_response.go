package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ResponseStage string

const (
	StageChat       ResponseStage = "chat"
	StageExtraction ResponseStage = "extraction"
)

type ErrorKind string

const (
	ErrorKindTransient       ErrorKind = "transient"
	ErrorKindBackend         ErrorKind = "backend"
	ErrorKindMalformedOutput ErrorKind = "malformed_output"
	ErrorKindValidation      ErrorKind = "validation"
	ErrorKindTruncated       ErrorKind = "truncated"
)

// ModelResponse records exactly one LLM call. Written once, never updated.
type ModelResponse struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"workspace_id"`
	PromptRunID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"prompt_run_id"`
	PromptID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"prompt_id"`
	BackendName      string         `gorm:"column:backend_name;not null;index" json:"backend_name"`
	ModelName        string         `gorm:"column:model_name" json:"model_name"`
	Stage            ResponseStage  `gorm:"column:stage;not null" json:"stage"`
	ResponseText     string         `gorm:"column:response_text;type:text" json:"response_text"`
	LatencyMS        int64          `gorm:"column:latency_ms;not null;default:0" json:"latency_ms"`
	PromptTokens     int            `gorm:"column:prompt_tokens;not null;default:0" json:"prompt_tokens"`
	CompletionTokens int            `gorm:"column:completion_tokens;not null;default:0" json:"completion_tokens"`
	TotalTokens      int            `gorm:"column:total_tokens;not null;default:0" json:"total_tokens"`
	Error            string         `gorm:"column:error;type:text" json:"error,omitempty"`
	ErrorKind        ErrorKind      `gorm:"column:error_kind" json:"error_kind,omitempty"`
	Insights         datatypes.JSON `gorm:"column:insights" json:"insights,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ModelResponse) TableName() string { return "model_response" }
