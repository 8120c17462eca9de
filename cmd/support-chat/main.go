package main

import (
	"log"

	"github.com/pr-poehali-dev/client-support-chat-2/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
