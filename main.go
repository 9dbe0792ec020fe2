package main

import "github.com/BrightBytes/insight-cli/cmd"

func main() {
	cmd.Execute()
}
