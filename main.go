package main

import "guildkeeper/cmd"

func main() {
	cmd.Execute()
}
