// Package progression holds the pure rules of the gamification engine: the
// XP reward table, the level curve and the achievement rule table. Nothing
// here touches storage.
package progression

import "github.com/yukikurage/taskquest-api/internal/models"

// xpByDifficulty is fixed; it is not configurable at runtime.
var xpByDifficulty = map[models.TaskDifficulty]int{
	models.DifficultyEasy:   10,
	models.DifficultyMedium: 25,
	models.DifficultyHard:   50,
	models.DifficultyInsane: 100,
}

// XPForDifficulty returns the reward for a difficulty and whether the
// difficulty is known.
func XPForDifficulty(d models.TaskDifficulty) (int, bool) {
	xp, ok := xpByDifficulty[d]
	return xp, ok
}

// RequiredXP is the XP needed to advance from level to level+1.
func RequiredXP(level int) int {
	if level < 1 {
		level = 1
	}
	return 100 + (level-1)*50
}

// Snapshot is the part of a user the engine reads and writes.
type Snapshot struct {
	Level             int
	XP                int
	NumTasksCompleted int
}

// SnapshotOf extracts the progression fields from a user.
func SnapshotOf(u models.User) Snapshot {
	return Snapshot{Level: u.Level, XP: u.XP, NumTasksCompleted: u.NumTasksCompleted}
}

// Apply adds one completion worth xp to s. Several levels may be gained in a
// single call. The result always satisfies XP < RequiredXP(Level).
func Apply(s Snapshot, xp int) Snapshot {
	if s.Level < 1 {
		s.Level = 1
	}
	if xp < 0 {
		xp = 0
	}

	s.XP += xp
	for s.XP >= RequiredXP(s.Level) {
		s.XP -= RequiredXP(s.Level)
		s.Level++
	}
	s.NumTasksCompleted++

	return s
}

// TotalXP is the cumulative XP represented by a level/xp pair, counted from
// level 1 with zero XP.
func TotalXP(level, xp int) int {
	total := xp
	for l := 1; l < level; l++ {
		total += RequiredXP(l)
	}
	return total
}
