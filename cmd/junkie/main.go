package main

import (
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/cli"
)

func main() {
	cli.Execute()
}
