package progression

// Rule is one entry of the achievement table.
type Rule struct {
	Code        string
	Name        string
	Description string
	Check       func(Snapshot) bool
}

var rules = []Rule{
	{
		Code:        "task_1",
		Name:        "Getting Started",
		Description: "Complete your first task.",
		Check:       func(s Snapshot) bool { return s.NumTasksCompleted >= 1 },
	},
	{
		Code:        "task_10",
		Name:        "Task Streak",
		Description: "Complete 10 tasks.",
		Check:       func(s Snapshot) bool { return s.NumTasksCompleted >= 10 },
	},
	{
		Code:        "task_25",
		Name:        "Quarter Century",
		Description: "Complete 25 tasks.",
		Check:       func(s Snapshot) bool { return s.NumTasksCompleted >= 25 },
	},
	{
		Code:        "level_10",
		Name:        "Level 10",
		Description: "Reach level 10.",
		Check:       func(s Snapshot) bool { return s.Level >= 10 },
	},
	{
		Code:        "level_20",
		Name:        "Level 20",
		Description: "Reach level 20.",
		Check:       func(s Snapshot) bool { return s.Level >= 20 },
	},
	{
		Code:        "level_30",
		Name:        "Level 30",
		Description: "Reach level 30.",
		Check:       func(s Snapshot) bool { return s.Level >= 30 },
	},
}

// Rules returns a copy of the achievement table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Evaluate returns the rules satisfied by s, in table order.
func Evaluate(s Snapshot) []Rule {
	var satisfied []Rule
	for _, r := range rules {
		if r.Check(s) {
			satisfied = append(satisfied, r)
		}
	}
	return satisfied
}
