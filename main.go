package main

import "github.com/lepinkainen/libris/cmd"

// execute is a variable so tests can stub out the CLI entry point.
var execute = cmd.Execute

func main() {
	execute()
}
