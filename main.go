package main

import (
	"github.com/deskrelay/deskrelay/cmd"
	pmode "github.com/deskrelay/deskrelay/config/mode"
)

var (
	version    = "unknown"
	commitHash = "unknown"
	mode       = pmode.Dev
)

func main() {
	pmode.Set(mode)
	cmd.Run(version, commitHash)
}
