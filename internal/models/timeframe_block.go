package models

import "fmt"

type TimeframeBlock struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Label        string `gorm:"not null" json:"label"`
	StartTime    string `gorm:"not null" json:"start_time"`
	EndTime      string `gorm:"not null" json:"end_time"`
	DisplayOrder int    `gorm:"not null" json:"display_order"`
	Active       bool   `gorm:"not null" json:"active"`
}

func (TimeframeBlock) TableName() string {
	return "timeframe_blocks"
}

func DefaultBlocks() []TimeframeBlock {
	return []TimeframeBlock{
		{ID: "morning", Label: "Morning", StartTime: "06:00", EndTime: "10:00", DisplayOrder: 0, Active: true},
		{ID: "midday", Label: "Midday", StartTime: "10:00", EndTime: "14:00", DisplayOrder: 1, Active: true},
		{ID: "afternoon", Label: "Afternoon", StartTime: "14:00", EndTime: "18:00", DisplayOrder: 2, Active: true},
		{ID: "evening", Label: "Evening", StartTime: "18:00", EndTime: "22:00", DisplayOrder: 3, Active: true},
		{ID: "night", Label: "Night", StartTime: "22:00", EndTime: "23:59", DisplayOrder: 4, Active: true},
	}
}

func (block TimeframeBlock) Validate() error {
	if len(block.Label) > MaxLabelLength {
		return invalidField("label", "must be at most %d characters", MaxLabelLength)
	}
	start, err := ParseClock(block.StartTime)
	if err != nil {
		return withField(err, "start_time")
	}
	end, err := ParseClock(block.EndTime)
	if err != nil {
		return withField(err, "end_time")
	}
	if end <= start {
		return invalidField("end_time", "%s must be after start %s", block.EndTime, block.StartTime)
	}
	return nil
}

// ValidateBlockSet checks every block plus the set-level constraints:
// ids are unique and display orders form one contiguous run.
func ValidateBlockSet(blocks []TimeframeBlock) error {
	seenIDs := make(map[string]struct{}, len(blocks))
	seenOrders := make(map[int]struct{}, len(blocks))
	minOrder := 0
	for index, block := range blocks {
		if err := block.Validate(); err != nil {
			return prefixField(err, fmt.Sprintf("blocks[%d]", index))
		}
		if block.ID != "" {
			if _, exists := seenIDs[block.ID]; exists {
				return invalidField(fmt.Sprintf("blocks[%d].id", index), "duplicate id %q", block.ID)
			}
			seenIDs[block.ID] = struct{}{}
		}
		if _, exists := seenOrders[block.DisplayOrder]; exists {
			return invalidField(fmt.Sprintf("blocks[%d].display_order", index), "duplicate display order %d", block.DisplayOrder)
		}
		seenOrders[block.DisplayOrder] = struct{}{}
		if index == 0 || block.DisplayOrder < minOrder {
			minOrder = block.DisplayOrder
		}
	}
	for offset := range blocks {
		if _, ok := seenOrders[minOrder+offset]; !ok {
			return invalidField("blocks", "display order must be contiguous, missing %d", minOrder+offset)
		}
	}
	return nil
}
