package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/husainf4l/rolekits/internal/cvservice"
)

func main() {
	if err := cvservice.Run(); err != nil {
		log.Error().Err(err).Msg("rolekits-service exited with error")
		os.Exit(1)
	}
}
