package main

import "github.com/txroyale/engine/app/player/cmd"

func main() {
	cmd.Execute()
}
