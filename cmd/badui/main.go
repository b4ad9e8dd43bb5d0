package main

import "badui/cmd/badui/commands"

func main() {
	commands.Execute()
}
