package main

import "github.com/heesho/launchpad/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
