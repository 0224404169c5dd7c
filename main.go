package main

import (
	"flag"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_dashboard/api"
	"retail_dashboard/internal/config"
)

func main() {
	cfgPath := flag.String("config", "", "path to yaml config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	r := gin.Default()
	if err := api.InitRoutes(r, cfg, logger); err != nil {
		panic(fmt.Errorf("error initializing routes: %v", err))
	}

	if err := r.Run(cfg.ListenAddr); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}
