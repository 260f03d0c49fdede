package main

import "github.com/hbomb79/Cadence/cmd"

// main is the entry point to the program; all behaviour is
// defined by the commands in the cmd package.
func main() {
	cmd.Execute()
}
