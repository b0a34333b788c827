package main

import (
	"github.com/turtacn/riskscore360/cmd/cli"
)

// main is the entry point for the riskscore command-line tool.
// main 是 riskscore 命令行工具的入口点。
func main() {
	cli.Execute()
}
