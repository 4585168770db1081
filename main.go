package main

import (
	"github.com/rowan-kv/rowan/cmd"
)

func main() {
	cmd.Execute()
}
