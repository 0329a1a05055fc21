// Stack Extension Executor - an interactive menu around the stk tool.
package main

import (
	"github.com/kannan/stk-executor/internal/cli"
)

func main() {
	cli.Execute()
}
