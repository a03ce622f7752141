package main

import "github.com/ponyo877/sharepad/cli/cmd"

func main() {
	cmd.Execute()
}
