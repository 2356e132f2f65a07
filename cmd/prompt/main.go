package main

import (
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mprompt/promptline/internal/cli"
)

func main() {
	rand.Seed(time.Now().UnixNano())

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT)
	go func() {
		<-interrupts
		os.Exit(130)
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
