package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/fleetglass/fleetglass/cmd/fglass-agent/app"
)

func main() {
	app.NewApp().Run()
}
