package main

import "github.com/spec-kit/amats-service/cmd/amatsctl/commands"

func main() {
	commands.Execute()
}
