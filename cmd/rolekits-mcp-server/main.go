package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/husainf4l/rolekits/internal/agent"
)

func main() {
	if err := agent.RunMCPServer(); err != nil {
		log.Error().Err(err).Msg("MCP server exited with error")
		os.Exit(1)
	}
}
