package domain

import (
	"strings"
	"time"
)

const (
	// TagMinLength and TagMaxLength bound the gang tag shown next to member names.
	TagMinLength = 2
	TagMaxLength = 5
)

// Gang is a player-founded faction with a shared treasury and reputation stats.
type Gang struct {
	ID          int64
	Name        string
	Tag         string
	Description string
	Treasury    int64
	Level       int
	Experience  int64
	Respect     int64
	Strength    int64
	Defense     int64
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateName reports whether the gang name is acceptable.
func ValidateName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// ValidateTag reports whether the gang tag is acceptable.
func ValidateTag(tag string) bool {
	length := len(strings.TrimSpace(tag))
	return length >= TagMinLength && length <= TagMaxLength
}

// LevelForExperience derives a gang's level from its lifetime experience.
// Each level costs 1000 experience more than the previous one, so level n
// requires 1000 * n*(n-1)/2 total experience.
func LevelForExperience(experience int64) int {
	if experience < 0 {
		return 1
	}
	level := 1
	var threshold int64
	for {
		threshold += int64(level) * 1000
		if experience < threshold {
			return level
		}
		level++
	}
}
