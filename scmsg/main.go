package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sjy-dv/scmsg/scmsg/launch"
	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
)

func init() {
	godotenv.Load()
	os.Setenv("TZ", "UTC")
	time.Local = time.UTC
}

func main() {
	if err := BootSystem(); err != nil {
		log.Errorf("CRITICAL SystemCrashError: %v", err)
		os.Exit(1)
	}
}

func BootSystem() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	launcher := launch.LoadEnv()
	return launcher.Launch(ctx)
}
