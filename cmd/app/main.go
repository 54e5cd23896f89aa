package main

import (
	"github.com/NicolasKocher/sprint-poker/internal/app"
	"github.com/NicolasKocher/sprint-poker/internal/config"
)

func main() {
	app.Go(config.Load())
}
