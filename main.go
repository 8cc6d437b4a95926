package main

import (
	"github.com/cppla/membership/config"
	"github.com/cppla/membership/models"
	"github.com/cppla/membership/repository"
	"github.com/cppla/membership/routes"
	"github.com/cppla/membership/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	var store repository.MembershipStore
	if cfg.DBDriver == "memory" {
		utils.Sugar.Warn("DB_DRIVER=memory, memberships are not persisted")
		store = repository.NewMemoryStore()
	} else {
		store = repository.NewGormStore(config.InitDatabase(&models.Membership{}))
	}

	r := routes.SetupRouter(cfg, store, utils.GetRedis())

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
