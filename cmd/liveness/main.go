package main

import (
	"fmt"
	"os"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/api"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/server"
)

func main() {
	if err := server.Run(api.ServiceLiveness); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
