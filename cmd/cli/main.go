package main

import "github.com/solver492/manu-pro/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
