package main

import (
	"github.com/roamkit/tripscope/cmd"
)

func main() {
	cmd.Execute()
}
