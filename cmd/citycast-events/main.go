package main

import (
	_ "time/tzdata"

	"github.com/pfrederiksen/citycast-events/internal/cli"
)

func main() {
	cli.Execute()
}
