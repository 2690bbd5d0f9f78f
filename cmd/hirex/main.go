package main

import "github.com/hirex-ai/hirex/backend/internal/cli"

func main() {
	cli.Execute()
}
