package domain

// BlockType categorizes a time block. The type decides which XP bucket
// a completion falls into.
type BlockType string

const (
	BlockWork     BlockType = "work"
	BlockRest     BlockType = "rest"
	BlockHabit    BlockType = "habit"
	BlockExercise BlockType = "exercise"
	BlockSocial   BlockType = "social"
	BlockHealth   BlockType = "health"
	BlockOther    BlockType = "other"
)

// ValidBlockType reports whether t is a known block type.
func ValidBlockType(t BlockType) bool {
	switch t {
	case BlockWork, BlockRest, BlockHabit, BlockExercise, BlockSocial, BlockHealth, BlockOther:
		return true
	}
	return false
}

// TimeBlock is one planned or tracked slot of the day. Start and end
// are "HH:MM" 24-hour strings, so they compare lexicographically.
// IsCompleted is only meaningful on the actual track.
type TimeBlock struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Type        BlockType `json:"type"`
	IsCompleted bool      `json:"isCompleted"`
	Notes       string    `json:"notes,omitempty"`
}

// DayPlan holds the planned and actual tracks for one day. The actual
// track starts as a copy of the planned one and diverges independently
// (completion flags, deletions).
type DayPlan struct {
	Date          string      `json:"date"`
	PlannedBlocks []TimeBlock `json:"plannedBlocks"`
	ActualBlocks  []TimeBlock `json:"actualBlocks"`
}

// Clone returns a copy with independent block slices.
func (p DayPlan) Clone() DayPlan {
	out := p
	out.PlannedBlocks = append([]TimeBlock(nil), p.PlannedBlocks...)
	out.ActualBlocks = append([]TimeBlock(nil), p.ActualBlocks...)
	return out
}

// FindActual returns the actual-track block with the given id.
func (p DayPlan) FindActual(id string) (TimeBlock, bool) {
	for _, b := range p.ActualBlocks {
		if b.ID == id {
			return b, true
		}
	}
	return TimeBlock{}, false
}

// InsertPlanned inserts a block keeping PlannedBlocks sorted ascending
// by StartTime. Ties keep insertion order.
func (p DayPlan) InsertPlanned(b TimeBlock) DayPlan {
	out := p.Clone()
	at := len(out.PlannedBlocks)
	for i, existing := range out.PlannedBlocks {
		if b.StartTime < existing.StartTime {
			at = i
			break
		}
	}
	out.PlannedBlocks = append(out.PlannedBlocks, TimeBlock{})
	copy(out.PlannedBlocks[at+1:], out.PlannedBlocks[at:])
	out.PlannedBlocks[at] = b
	return out
}

// ValidHHMM reports whether s looks like a 24-hour "HH:MM" timestamp.
func ValidHHMM(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h1, h2 := s[0], s[1]
	m1, m2 := s[3], s[4]
	if h1 < '0' || h1 > '2' || h2 < '0' || h2 > '9' || m1 < '0' || m1 > '5' || m2 < '0' || m2 > '9' {
		return false
	}
	hour := int(h1-'0')*10 + int(h2-'0')
	return hour < 24
}
