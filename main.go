package main

import "github.com/KaramelBytes/housing-explorer/cmd"

func main() {
	cmd.Execute()
}
