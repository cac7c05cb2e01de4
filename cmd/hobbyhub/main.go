package main

import (
	"github.com/hobbyhub/hobbyhub/internal/cli"
	"github.com/hobbyhub/hobbyhub/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
}

func main() {
	cli.Execute()
}
