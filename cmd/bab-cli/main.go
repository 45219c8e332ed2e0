package main

import (
	"context"

	"babnet-backend/cmd/bab-cli/commands"
	"babnet-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
