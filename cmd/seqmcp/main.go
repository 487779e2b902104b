package main

import (
	"os"

	"github.com/qiniu/seqmcp/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
