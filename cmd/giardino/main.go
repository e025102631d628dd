package main

import "github.com/diewo77/giardino/cmd/giardino/commands"

func main() {
	commands.Execute()
}
