package models

import (
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Canonical concern statuses. The older web client used pending/in progress/resolved;
// those are normalized at the boundary, see NormalizeConcernStatus.
const (
	ConcernStatusNew         = "new"
	ConcernStatusUnderReview = "under_review"
	ConcernStatusSolved      = "solved"
	ConcernStatusIgnored     = "ignored"
)

var ConcernStatuses = []string{
	ConcernStatusNew,
	ConcernStatusUnderReview,
	ConcernStatusSolved,
	ConcernStatusIgnored,
}

var ConcernCategories = []string{"Academic", "Technical", "Administrative", "General"}

const (
	VoteTypeHelpful    = "helpful"
	VoteTypeNotHelpful = "not_helpful"
)

var VoteTypes = []string{VoteTypeHelpful, VoteTypeNotHelpful}

type Concern struct {
	gorm.Model
	AuthorName string `json:"authorName" gorm:"size:120"` // empty = shown as "Anonymous" by clients
	AuthorID   *uint  `json:"authorID" gorm:"index"`
	Author     *User  `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Title      string `json:"title" gorm:"size:200;not null"`
	Body       string `json:"body" gorm:"type:text;not null"`
	Category   string `json:"category" gorm:"size:40;not null;index"`
	Status     string `json:"status" gorm:"type:varchar(20);default:'new';index"`

	HelpfulVotes    int64 `json:"helpfulVotes" gorm:"default:0"`
	NotHelpfulVotes int64 `json:"notHelpfulVotes" gorm:"default:0"`

	IsHidden bool       `json:"isHidden" gorm:"default:false;index"`
	HiddenAt *time.Time `json:"hiddenAt"`
	HiddenBy *uint      `json:"hiddenBy"`

	ResolvedAt *time.Time `json:"resolvedAt"`

	Replies []ConcernReply `json:"replies,omitempty" gorm:"foreignKey:ConcernID;constraint:OnDelete:CASCADE"`
	Votes   []ConcernVote  `json:"-" gorm:"foreignKey:ConcernID;constraint:OnDelete:CASCADE"`
}

type ConcernReply struct {
	gorm.Model
	ConcernID  uint   `json:"concernID" gorm:"index;not null"`
	AuthorName string `json:"authorName" gorm:"size:120"` // admin replies are tagged "Admin"
	Body       string `json:"body" gorm:"type:text;not null"`
}

// ConcernVote is the vote ledger: one row per (concern, voter token).
// The token is generated client-side and is a pseudo-identity, not an account.
type ConcernVote struct {
	gorm.Model
	ConcernID  uint   `json:"concernID" gorm:"uniqueIndex:idx_concern_voter;not null"`
	VoterToken string `json:"voterToken" gorm:"uniqueIndex:idx_concern_voter;size:64;not null"`
	VoteType   string `json:"voteType" gorm:"type:varchar(20);not null"`
}

// NormalizeConcernStatus maps the legacy status vocabulary onto the canonical one.
// Unknown values are returned unchanged so membership checks can reject them.
func NormalizeConcernStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "new":
		return ConcernStatusNew
	case "in progress", "in_progress", "under review", "under_review":
		return ConcernStatusUnderReview
	case "resolved", "solved":
		return ConcernStatusSolved
	case "ignored":
		return ConcernStatusIgnored
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}

func IsValidConcernStatus(s string) bool {
	return slices.Contains(ConcernStatuses, s)
}

// ValidateConcernSubmission checks a proposed submission and returns field-keyed
// error messages. An empty map means the submission is acceptable.
func ValidateConcernSubmission(title, body, category string) map[string]string {
	errs := map[string]string{}
	if len(strings.TrimSpace(title)) < 5 {
		errs["title"] = "title must be at least 5 characters"
	}
	if len(strings.TrimSpace(body)) < 20 {
		errs["body"] = "description must be at least 20 characters"
	}
	if !slices.Contains(ConcernCategories, strings.TrimSpace(category)) {
		errs["category"] = "category must be one of: " + strings.Join(ConcernCategories, ", ")
	}
	return errs
}
