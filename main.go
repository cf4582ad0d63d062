package main

import (
	"github.com/promptbridge/promptbridge/cmd"
	"github.com/promptbridge/promptbridge/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
