package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/services"
)

// Services bundles the services the HTTP layer depends on.
type Services struct {
	Auth        *services.AuthService
	User        *services.UserService
	Workspace   *services.WorkspaceService
	Team        *services.TeamService
	Task        *services.TaskService
	Progression *services.ProgressionService
	Message     *services.MessageService
}

// RegisterRoutes mounts the /api routes on r. writeLimit, when non-nil, runs
// after authentication on every protected group.
func RegisterRoutes(r gin.IRouter, svc Services, writeLimit gin.HandlerFunc) {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.User)
	workspaceHandler := NewWorkspaceHandler(svc.Workspace, svc.Team)
	teamHandler := NewTeamHandler(svc.Team)
	taskHandler := NewTaskHandler(svc.Task)
	achievementHandler := NewAchievementHandler(svc.Progression)
	messageHandler := NewMessageHandler(svc.Message)

	protected := []gin.HandlerFunc{middleware.RequireAuth()}
	if writeLimit != nil {
		protected = append(protected, writeLimit)
	}

	requireTask := middleware.RequireTaskAccess(svc.Task)
	requireWorkspace := middleware.RequireWorkspaceAccess(svc.Workspace)
	requireWorkspaceAdmin := middleware.RequireWorkspaceAdmin()

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		users := api.Group("/users", protected...)
		{
			users.GET("/search", userHandler.SearchUsers)
			users.PATCH("/profile", userHandler.UpdateProfile)
		}

		workspaces := api.Group("/workspaces", protected...)
		{
			workspaces.GET("/my", workspaceHandler.ListMyWorkspaces)
			workspaces.POST("", workspaceHandler.CreateWorkspace)
			workspaces.POST("/join", workspaceHandler.JoinWorkspace)
			workspaces.GET("/:id/teams", requireWorkspace, workspaceHandler.ListTeams)
			workspaces.GET("/:id/summary", requireWorkspace, workspaceHandler.GetSummary)
			workspaces.PUT("/:id", requireWorkspace, requireWorkspaceAdmin, workspaceHandler.RenameWorkspace)
			workspaces.POST("/:id/regenerate-code", requireWorkspace, requireWorkspaceAdmin, workspaceHandler.RegenerateCode)
			workspaces.DELETE("/:id", requireWorkspace, requireWorkspaceAdmin, workspaceHandler.DeleteWorkspace)
			workspaces.DELETE("/:id/members/:user_id", requireWorkspace, workspaceHandler.RemoveMember)
			workspaces.POST("/:id/teams", requireWorkspace, requireWorkspaceAdmin, workspaceHandler.CreateTeam)
		}

		teams := api.Group("/teams", protected...)
		{
			teams.GET("/my", teamHandler.ListMyTeams)
			teams.POST("/:id/members", teamHandler.AddMember)
			teams.DELETE("/:id/members/:user_id", teamHandler.RemoveMember)
			teams.POST("/:id/tasks/generate", taskHandler.GenerateTasks)
		}

		tasks := api.Group("/tasks", protected...)
		{
			tasks.GET("/my", taskHandler.ListMyTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", requireTask, taskHandler.GetTask)
			tasks.PATCH("/:id", requireTask, taskHandler.UpdateTask)
			tasks.DELETE("/:id", requireTask, taskHandler.DeleteTask)
			tasks.PATCH("/:id/status", requireTask, taskHandler.ChangeStatus)
			tasks.GET("/:id/collaborators", requireTask, taskHandler.ListCollaborators)
			tasks.POST("/:id/collaborators", requireTask, taskHandler.AddCollaborator)
			tasks.PATCH("/:id/collaborators/:user_id", requireTask, taskHandler.UpdateCollaboratorStatus)
			tasks.DELETE("/:id/collaborators/:user_id", requireTask, taskHandler.RemoveCollaborator)
		}

		achievements := api.Group("/achievements", protected...)
		{
			achievements.GET("/my", achievementHandler.ListMyAchievements)
		}

		messages := api.Group("/messages", protected...)
		{
			messages.GET("/recent", messageHandler.ListRecentConversations)
			messages.GET("/users/:user_id", messageHandler.ListDirect)
			messages.POST("/users/:user_id", messageHandler.SendDirect)
			messages.DELETE("/users/:user_id/all", messageHandler.ClearConversation)
			messages.GET("/tasks/:task_id", messageHandler.ListTaskMessages)
			messages.POST("/tasks/:task_id", messageHandler.SendTaskMessage)
			messages.PATCH("/:message_id", messageHandler.EditMessage)
			messages.DELETE("/:message_id", messageHandler.DeleteMessage)
			messages.GET("/blocks", messageHandler.ListBlocks)
			messages.POST("/block/:user_id", messageHandler.Block)
			messages.DELETE("/block/:user_id", messageHandler.Unblock)
		}
	}
}
