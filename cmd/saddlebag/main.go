// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command saddlebag is the operator CLI for a running saddlebag server.
package main

import (
	"fmt"
	"os"

	"github.com/taibuivan/saddlebag/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
