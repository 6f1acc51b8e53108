package main

import (
	"context"
	"errors"
	"github.com/csr-ugra/yellowpages-parser/cmd"
	"github.com/csr-ugra/yellowpages-parser/internal/db"
	"github.com/csr-ugra/yellowpages-parser/internal/log"
	"github.com/csr-ugra/yellowpages-parser/internal/util"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config := util.GetConfig()

	log.InitLogger(config)

	// log panic error
	defer func() {
		if r := recover(); r != nil {
			logger := log.GetLogger()
			logger.Panic(r)
		}
	}()

	connection, err := db.GetConnection(config)
	if err != nil {
		// re-fetching logger to log with all fields appended during program run
		logger := log.GetLogger()
		logger.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = cmd.Run(ctx, connection, config)
	stop()
	_ = connection.Close()

	if err != nil {
		logger := log.GetLogger()
		if errors.Is(err, context.Canceled) {
			logger.Warn("stopped by signal, stored pages are kept")
			os.Exit(1)
		}
		logger.Fatalln(err)
	}

	os.Exit(0)
}
