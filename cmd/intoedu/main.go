// cmd/intoedu/main.go
//
// Entry point for the into-EdU content service. All application wiring
// lives in internal/app/bootstrap; this binary just hands the lifecycle
// hooks to WAFFLE.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aalaeg1/into-EdU/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		fmt.Fprintln(os.Stderr, "intoedu:", err)
		os.Exit(1)
	}
}
