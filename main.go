package main

import "github.com/frahmantamala/revolv-ledger/cmd"

func main() {
	cmd.Execute()
}
