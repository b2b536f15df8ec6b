package main

import (
	"context"

	"govsearch-backend/cmd/govsearch-cli/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
