package model

import "gorm.io/datatypes"

type Category string

const (
	Anatomy      Category = "anatomy"
	Physiology   Category = "physiology"
	Pathology    Category = "pathology"
	Pharmacology Category = "pharmacology"
	Microbiology Category = "microbiology"
	General      Category = "general"
)

func (c Category) Valid() bool {
	switch c {
	case Anatomy, Physiology, Pathology, Pharmacology, Microbiology, General:
		return true
	}
	return false
}

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

type OptionType string

const (
	OptionText  OptionType = "text"
	OptionImage OptionType = "image"
)

type Option struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	OptionType OptionType `json:"option_type"`
	IsCorrect  bool       `json:"is_correct"`
}

// swagger:model Question
type Question struct {
	DocumentBase
	Text        string                      `gorm:"type:text;not null" json:"text"`
	Explanation string                      `gorm:"type:text" json:"explanation,omitempty"`
	Category    Category                    `gorm:"size:32;index;not null" json:"category"`
	Difficulty  Difficulty                  `gorm:"size:16;index;not null" json:"difficulty"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Options     datatypes.JSONSlice[Option] `json:"options"`
	ImageURL    string                      `gorm:"size:512" json:"image_url,omitempty"`
	Active      bool                        `gorm:"index;not null" json:"active"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionIDs returns the set of option ids on the question.
func (q *Question) OptionIDs() map[string]bool {
	ids := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		ids[o.ID] = true
	}
	return ids
}
