package models

// All returns every model managed by AutoMigrate, parents first.
func All() []any {
	return []any{
		&User{},
		&Workspace{},
		&UserWorkspace{},
		&Team{},
		&TeamMember{},
		&Task{},
		&TaskCollaborator{},
		&Achievement{},
		&UserAchievement{},
		&Message{},
		&UserBlock{},
	}
}
