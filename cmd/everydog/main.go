package main

import "github.com/everydog-league/api/cmd/everydog/cmd"

func main() {
	cmd.Execute()
}
