package main

import "github.com/jsphweid/perfdex/cmd"

func main() {
	cmd.Execute()
}
