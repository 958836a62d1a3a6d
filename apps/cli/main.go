package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
	"github.com/nicolascodet/canvas-remake/services/logger"
)

func main() {
	conf := core.NewConfig()
	lms.SetLocation(conf.Location())

	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "LMSCTL : ", log.LstdFlags), conf)
	logger.Enable(!conf.Debug)

	client, err := lmsapi.NewClientFromConfig(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cli := newCommandLine(conf, client, logger, os.Stdin, os.Stdout)
	err = cli.run(ctx, os.Args)
	stop()
	logger.Close()

	if err != nil {
		if err != errHelp {
			log.New(os.Stderr, "", 0).Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
