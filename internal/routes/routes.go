package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bcZhang717/picture/internal/auth"
	"github.com/bcZhang717/picture/internal/config"
	"github.com/bcZhang717/picture/internal/crawler"
	"github.com/bcZhang717/picture/internal/handlers"
	"github.com/bcZhang717/picture/internal/middleware"
	"github.com/bcZhang717/picture/internal/services"
	"github.com/bcZhang717/picture/internal/storage"
	"github.com/bcZhang717/picture/internal/upload"
)

func Setup(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	router := gin.New()

	router.Use(middleware.LoggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.Server.RateLimit))

	router.Static("/uploads", cfg.Storage.UploadPath)

	resolver, err := auth.NewResolver(db)
	if err != nil {
		return nil, err
	}
	store := storage.NewLocalStore(cfg.Storage.UploadPath, cfg.Storage.BaseURL)
	uploader := upload.NewUploader(store)
	bingCrawler := crawler.NewBingCrawler(cfg.Crawler.Endpoint, time.Duration(cfg.Crawler.TimeoutSeconds)*time.Second)

	userService := services.NewUserService(db)
	spaceService := services.NewSpaceService(db, resolver)
	pictureService := services.NewPictureService(db, uploader, store, bingCrawler, resolver, spaceService, cfg.Storage.BaseURL)
	analyzeService := services.NewAnalyzeService(db, spaceService)

	authHandler := handlers.NewAuthHandler(userService, cfg)
	spaceHandler := handlers.NewSpaceHandler(spaceService)
	pictureHandler := handlers.NewPictureHandler(pictureService, cfg)
	analyzeHandler := handlers.NewAnalyzeHandler(analyzeService)

	api := router.Group("/api")

	public := api.Group("")
	{
		authGroup := public.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// 公共图库浏览允许匿名, 登录管理员可见未过审图片
		browse := public.Group("/pictures")
		browse.Use(middleware.OptionalAuthMiddleware(db, cfg))
		{
			browse.GET("", pictureHandler.ListPictures)
			browse.GET("/tag_category", pictureHandler.ListTagCategory)
			browse.GET("/:id", pictureHandler.GetPicture)
		}
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(db, cfg))
	{
		user := protected.Group("/auth")
		{
			user.GET("/me", authHandler.GetMe)
		}

		pictures := protected.Group("/pictures")
		{
			pictures.POST("/upload", pictureHandler.UploadPicture)
			pictures.POST("/upload/url", pictureHandler.UploadPictureByURL)
			pictures.POST("/edit", pictureHandler.EditPicture)
			pictures.POST("/edit/batch", pictureHandler.EditPictureByBatch)
			pictures.POST("/search/color", pictureHandler.SearchPictureByColor)
			pictures.DELETE("/:id", pictureHandler.DeletePicture)
		}

		spaces := protected.Group("/spaces")
		{
			spaces.GET("", spaceHandler.ListSpaces)
			spaces.POST("", spaceHandler.AddSpace)
			spaces.PUT("", spaceHandler.UpdateSpace)
			spaces.GET("/:id", spaceHandler.GetSpace)

			spaces.GET("/:id/members", spaceHandler.ListMembers)
			spaces.POST("/members", spaceHandler.AddMember)
			spaces.PUT("/members", spaceHandler.EditMemberRole)
			spaces.DELETE("/:id/members/:user_id", spaceHandler.RemoveMember)
		}

		analyze := protected.Group("/analyze")
		{
			analyze.POST("/space/usage", analyzeHandler.SpaceUsage)
			analyze.POST("/space/category", analyzeHandler.SpaceCategory)
			analyze.POST("/space/tag", analyzeHandler.SpaceTag)
			analyze.POST("/space/size", analyzeHandler.SpaceSize)
			analyze.POST("/space/user", analyzeHandler.SpaceUser)
		}
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(db, cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/users", authHandler.ListUsers)
		admin.POST("/pictures/review", pictureHandler.ReviewPicture)
		admin.POST("/pictures/upload/batch", pictureHandler.UploadPictureByBatch)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "服务运行正常",
		})
	})

	return router, nil
}
