package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"Community_Feed/internal/handler"
	"Community_Feed/internal/middleware"
	"Community_Feed/internal/pkg"
	"Community_Feed/internal/service"
)

type Dependencies struct {
	Users       *service.UserService
	Communities *service.CommunityService
	Posts       *service.PostService
	Likes       *service.PostLikeService
	Tokens      *pkg.TokenManager
	Log         *slog.Logger
}

func InitRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.Log))

	user := handler.NewUserHandler(deps.Users)
	community := handler.NewCommunityHandler(deps.Communities)
	post := handler.NewPostHandler(deps.Posts)
	like := handler.NewPostLikeHandler(deps.Likes)

	auth := middleware.AuthMiddleware(deps.Tokens)
	optional := middleware.OptionalAuthMiddleware(deps.Tokens)

	api := r.Group("/api")
	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 用户相关接口
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", user.Register)
		authGroup.POST("/login", user.Login)
		authGroup.POST("/token/refresh", user.TokenRefresh)
		authGroup.POST("/logout", auth, user.Logout)
		authGroup.GET("/profile", auth, user.Profile)
		authGroup.PATCH("/profile", auth, user.UpdateProfile)
	}

	// 社区相关接口
	communityGroup := api.Group("/communities")
	{
		communityGroup.GET("", optional, community.List)
		communityGroup.POST("", auth, community.Create)
		communityGroup.GET("/:id", optional, community.Get)
		communityGroup.PATCH("/:id", auth, community.Update)
		communityGroup.DELETE("/:id", auth, community.Delete)
		communityGroup.POST("/:id/join", auth, community.Join)
		communityGroup.POST("/:id/leave", auth, community.Leave)
		communityGroup.GET("/:id/members", optional, community.Members)
	}

	// 帖子相关接口
	postGroup := api.Group("/posts")
	{
		postGroup.GET("", optional, post.List)
		postGroup.POST("", auth, post.CreatePost)
		postGroup.GET("/community/:id", auth, post.Feed)
		postGroup.GET("/:id", optional, post.GetPost)
		postGroup.PATCH("/:id", auth, post.UpdatePost)
		postGroup.DELETE("/:id", auth, post.DeletePost)
		postGroup.POST("/:id/like", auth, like.Toggle)
		postGroup.GET("/:id/likes", optional, like.List)
	}

	return r
}
