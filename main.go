package main

import (
	"github.com/leighmacdonald/q3stats/internal/cmd"
)

func main() {
	cmd.Execute()
}
