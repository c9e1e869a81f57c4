package main

import "goldops-core/cmd/goldops-cli/cmd"

func main() {
	cmd.Execute()
}
