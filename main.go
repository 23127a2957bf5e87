package main

import "github.com/eEQK/queue-ai/cmd"

func main() {
	cmd.Execute()
}
