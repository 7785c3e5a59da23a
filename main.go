package main

import "github.com/saadjs/nutricu/cmd/nutricu"

func main() {
	nutricu.Execute()
}
