package main

import (
	"github.com/SundayYogurt/directory_service/config"
	"github.com/SundayYogurt/directory_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
