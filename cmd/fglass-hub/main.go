package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/fleetglass/fleetglass/cmd/fglass-hub/app"
)

func main() {
	app.NewApp().Run()
}
