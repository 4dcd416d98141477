package main

import (
	_ "time/tzdata"

	"github.com/couchcryptid/perfect-day/internal/cmd"
)

func main() {
	cmd.Execute()
}
