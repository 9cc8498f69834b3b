package main

import (
	"time"

	"github.com/minglehq/mingle/config"
	"github.com/minglehq/mingle/controllers"
	"github.com/minglehq/mingle/media"
	"github.com/minglehq/mingle/routes"
	"github.com/minglehq/mingle/services"
	"github.com/minglehq/mingle/store"
	"github.com/minglehq/mingle/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase()
	st := store.NewMongo(db)

	mediaStore, err := media.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		utils.Sugar.Fatalf("media store init failed: %v", err)
	}

	postService := services.NewPostService(st.Users, st.Posts, st.Comments, mediaStore)
	commentService := services.NewCommentService(st.Users, st.Posts, st.Comments)
	userService := services.NewUserService(st.Users, st.Posts, st.Comments, mediaStore, postService)

	r := routes.SetupRouter(routes.Deps{
		Users:    userService,
		Posts:    postService,
		Comments: commentService,
		Store:    st,
	})

	// Sweep abandoned multipart staging files (best-effort)
	media.StartTempCleaner(controllers.TempUploadDir(), 5*time.Minute, time.Duration(cfg.UploadTempTTLMinutes)*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}

	config.CloseDatabase()
}
