package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VotableThread = "thread"
	VotableReply  = "reply"
)

type ForumThread struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	IsPinned bool      `gorm:"default:false" json:"is_pinned"`
	IsLocked bool      `gorm:"default:false" json:"is_locked"`
	Views    int       `gorm:"default:0" json:"views"`

	Author  User         `gorm:"foreignkey:AuthorID" json:"author,omitempty"`
	Replies []ForumReply `gorm:"foreignkey:ThreadID" json:"replies,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *ForumThread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type ForumReply struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ThreadID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"thread_id"`
	AuthorID      uuid.UUID  `gorm:"type:uuid;not null" json:"author_id"`
	ParentReplyID *uuid.UUID `gorm:"type:uuid" json:"parent_reply_id,omitempty"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	IsBestAnswer  bool       `gorm:"default:false" json:"is_best_answer"`

	Author User `gorm:"foreignkey:AuthorID" json:"author,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ForumReply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ForumVote stores a +1/-1 vote on a thread or reply. A user holds at most one
// vote per votable; changing a vote updates the row in place.
type ForumVote struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_votable" json:"user_id"`
	VotableType string    `gorm:"size:20;not null;uniqueIndex:idx_user_votable" json:"votable_type"`
	VotableID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_votable" json:"votable_id"`
	VoteType    int       `gorm:"not null" json:"vote_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v *ForumVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
