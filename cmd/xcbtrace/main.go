package main

import (
	"boscoin.io/xcb/cmd/xcbtrace/cmd"
)

func main() {
	cmd.Execute()
}
