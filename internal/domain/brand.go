package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
	SentimentMixed    Sentiment = "Mixed"
)

// ParseSentiment accepts any casing of the four labels.
func ParseSentiment(s string) (Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive, true
	case "neutral":
		return SentimentNeutral, true
	case "negative":
		return SentimentNegative, true
	case "mixed":
		return SentimentMixed, true
	default:
		return "", false
	}
}

type CitationType string

const (
	CitationDirect     CitationType = "direct"
	CitationReview     CitationType = "review"
	CitationNews       CitationType = "news"
	CitationComparison CitationType = "comparison"
	CitationOther      CitationType = "other"
)

type AssociatedLink struct {
	URL               string       `json:"url"`
	IsDirectBrandLink bool         `json:"is_direct_brand_link"`
	CitationType      CitationType `json:"citation_type,omitempty"`
}

// Brand aggregates everything observed about one brand (target or discovered
// competitor) inside a workspace. Rows are never hard-deleted.
type Brand struct {
	ID               uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID      uuid.UUID                           `gorm:"type:uuid;not null;uniqueIndex:idx_brand_ws_name,priority:1" json:"workspace_id"`
	BrandName        string                              `gorm:"column:brand_name;not null" json:"brand_name"`
	NameKey          string                              `gorm:"column:name_key;not null;uniqueIndex:idx_brand_ws_name,priority:2" json:"-"`
	Mentions         int                                 `gorm:"column:mentions;not null;default:0;index" json:"mentions"`
	AverageSentiment Sentiment                           `gorm:"column:average_sentiment" json:"average_sentiment,omitempty"`
	LastRank         *int                                `gorm:"column:last_rank" json:"last_rank"`
	ProminenceScore  int                                 `gorm:"column:prominence_score;not null;default:0" json:"prominence_score"`
	Context          string                              `gorm:"column:context;type:text" json:"context,omitempty"`
	AssociatedLinks  datatypes.JSONSlice[AssociatedLink] `gorm:"column:associated_links" json:"associated_links"`
	Color            string                              `gorm:"column:color" json:"color"`
	IsTarget         bool                                `gorm:"column:is_target;not null;default:false" json:"is_target"`
	LastSeenAt       *time.Time                          `gorm:"column:last_seen_at;index" json:"last_seen_at,omitempty"`
	LastPromptID     *uuid.UUID                          `gorm:"type:uuid;column:last_prompt_id" json:"last_prompt_id,omitempty"`
	CreatedAt        time.Time                           `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time                           `gorm:"not null" json:"updated_at"`
}

func (Brand) TableName() string { return "brand" }

// AssociatedLinksOrEmpty keeps the JSON column as [] rather than null.
func AssociatedLinksOrEmpty(links []AssociatedLink) datatypes.JSONSlice[AssociatedLink] {
	if links == nil {
		return datatypes.JSONSlice[AssociatedLink]{}
	}
	return datatypes.JSONSlice[AssociatedLink](links)
}
