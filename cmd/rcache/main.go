// Command rcache inspects and maintains a Redis-backed cache.
//
// Command rcache 用于检查和维护基于Redis的缓存。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Humphrey-He/rcache/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	rootCmd := cli.BuildRootCmd()
	go func() {
		sig := <-c
		switch sig {
		case syscall.SIGINT:
			rootCmd.PrintErrln("\nShutting down... (press Ctrl+C again to force)")
		default:
			rootCmd.PrintErrf("Received %s, shutting down...\n", sig)
		}
		cancel()
		<-c
		os.Exit(1)
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
