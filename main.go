package main

import "github.com/ValentinKolb/apocrypha/cmd"

func main() {
	cmd.Execute()
}
