package main

import (
	"github.com/codelore/backend/internal/server"
	"github.com/codelore/backend/internal/util"
	"github.com/codelore/backend/pkg/logger"
	"github.com/codelore/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
