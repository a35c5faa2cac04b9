package main

import "github.com/fleetglass/fleetglass/cmd/fglass-ctl/app"

func main() {
	app.NewRootCommand().Run()
}
