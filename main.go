package main

import "github.com/josephlewis42/sish/cmd"

func main() {
	cmd.Execute()
}
