package main

import "github.com/tigosprojects/tigos/internal/commands"

func main() {
	commands.Execute()
}
