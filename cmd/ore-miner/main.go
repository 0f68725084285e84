// ore-miner ORE 挖矿客户端
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/weisyn/oreminer/internal/app"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		var exitErr *app.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
