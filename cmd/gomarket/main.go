package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/talkincode/gomarket/config"
	"github.com/talkincode/gomarket/internal/adminapi"
	"github.com/talkincode/gomarket/internal/app"
	"github.com/talkincode/gomarket/internal/webserver"
	"go.uber.org/zap"
)

var (
	h        = flag.Bool("h", false, "help usage")
	conffile = flag.String("c", "/etc/gomarket.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and rebuild the database schema, all data will be lost")
	reindex  = flag.Bool("reindex", false, "rebuild the search index and exit")
)

func printHelp() {
	if *h {
		fmt.Fprintln(os.Stderr, "gomarket usage:\n\ngomarket [options]\n\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	printHelp()

	appConfig := config.LoadConfig(*conffile)
	application := app.NewApplication(appConfig)
	application.Init(appConfig)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	if *reindex {
		if err := application.ReindexNow(); err != nil {
			zap.S().Fatalf("reindex failed: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application.StartBackgroundJobs(ctx)

	server := webserver.NewWebServer(application)
	adminapi.Register(server, application)

	go func() {
		<-ctx.Done()
		_ = server.Echo().Shutdown(context.Background())
	}()

	if err := server.Start(); err != nil {
		zap.S().Infof("web server stopped: %v", err)
	}
}
