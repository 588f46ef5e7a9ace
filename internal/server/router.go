package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"taskboard/internal/activity"
	"taskboard/internal/auth"
	"taskboard/internal/container"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Repo       repository.Store
	Tokens     *auth.TokenManager
	Registry   *realtime.Registry
	Publisher  realtime.Publisher
	SendBuffer int
	Logger     logrus.FieldLogger
	// Gateway is built from the fields above when nil.
	Gateway *realtime.Gateway
}

// NewGateway builds the websocket gateway the router serves.
func NewGateway(d Deps) *realtime.Gateway {
	return realtime.NewGateway(realtime.GatewayConfig{
		Tokens:     d.Tokens,
		Directory:  d.Repo,
		Registry:   d.Registry,
		Publisher:  d.Publisher,
		SendBuffer: d.SendBuffer,
		Logger:     d.Logger.WithField("component", "gateway"),
	})
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))

	store := container.NewStore(d.Repo, activity.NewRecorder(), d.Publisher, d.Logger)
	gateway := d.Gateway
	if gateway == nil {
		gateway = NewGateway(d)
	}

	userHandler := handler.NewUserHandler(d.Repo, d.Tokens, d.Logger)
	boardHandler := handler.NewBoardHandler(store, d.Logger)
	listHandler := handler.NewListHandler(store, d.Logger)
	cardHandler := handler.NewCardHandler(store, d.Logger)
	childHandler := handler.NewChildHandler(store, d.Logger)
	realtimeHandler := handler.NewRealtimeHandler(gateway)

	// Public routes
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	// The websocket authenticates with the token query parameter.
	r.GET("/ws/boards/:id", realtimeHandler.Subscribe)

	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(d.Tokens))
	{
		// Board routes
		authorized.POST("/boards", boardHandler.Create)
		authorized.GET("/boards", boardHandler.GetAll)
		authorized.GET("/boards/:id", boardHandler.GetByID)
		authorized.PUT("/boards/:id", boardHandler.Update)
		authorized.DELETE("/boards/:id", boardHandler.Archive)
		authorized.DELETE("/boards/:id/permanent", boardHandler.Delete)
		authorized.GET("/boards/:id/activities", boardHandler.Activities)
		authorized.POST("/boards/:id/reorder_lists", boardHandler.ReorderLists)

		// Membership routes
		authorized.POST("/boards/:id/members", boardHandler.AddMember)
		authorized.DELETE("/boards/:id/members/:user_id", boardHandler.RemoveMember)

		// List routes
		authorized.POST("/boards/:id/lists", listHandler.Create)
		authorized.GET("/boards/:id/lists", listHandler.GetAll)
		authorized.PUT("/lists/:id", listHandler.Update)
		authorized.POST("/lists/:id/archive", listHandler.Archive)
		authorized.DELETE("/lists/:id", listHandler.Delete)

		// Card routes
		authorized.POST("/lists/:id/cards", cardHandler.Create)
		authorized.GET("/lists/:id/cards", cardHandler.GetByList)
		authorized.POST("/lists/:id/reorder_cards", cardHandler.Reorder)
		authorized.GET("/cards/:id", cardHandler.GetByID)
		authorized.PUT("/cards/:id", cardHandler.Update)
		authorized.POST("/cards/:id/move", cardHandler.Move)
		authorized.POST("/cards/:id/archive", cardHandler.Archive)
		authorized.DELETE("/cards/:id", cardHandler.Delete)

		// Comment and checklist routes
		authorized.POST("/cards/:id/comments", childHandler.AddComment)
		authorized.GET("/cards/:id/comments", childHandler.Comments)
		authorized.POST("/cards/:id/checklists", childHandler.CreateChecklist)
		authorized.GET("/cards/:id/checklists", childHandler.Checklists)
		authorized.PUT("/comments/:id", childHandler.UpdateComment)
		authorized.DELETE("/comments/:id", childHandler.DeleteComment)
		authorized.DELETE("/checklists/:id", childHandler.DeleteChecklist)
		authorized.POST("/checklists/:id/items", childHandler.AddItem)
		authorized.PUT("/checklist-items/:id", childHandler.UpdateItem)
		authorized.DELETE("/checklist-items/:id", childHandler.DeleteItem)

		// Profile routes
		authorized.GET("/profile", userHandler.GetProfile)
		authorized.PUT("/profile", userHandler.UpdateProfile)
	}
	return r
}
