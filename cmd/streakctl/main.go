package main

import "github.com/husseinvr97/fasee7System-sub002/cmd/streakctl/cmd"

func main() {
	cmd.Execute()
}
