package main

import (
	"wikiexplorer/cmd/handlers"
	"wikiexplorer/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
