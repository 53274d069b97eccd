// Command campuschat is a terminal client for the campus marketplace assistant.
package main

import "github.com/diogo/campuschat/internal/commands"

func main() {
	commands.Execute()
}
