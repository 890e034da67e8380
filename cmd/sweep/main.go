package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"getjobs/internal/app"
	"getjobs/internal/config"
	"getjobs/internal/pkg/logging"
)

func main() {
	sweep := flag.Bool("sweep", false, "expire postings older than the freshness window now")
	renew := flag.String("renew", "", "comma separated posting ids to mark as still open")
	flag.Parse()

	if !*sweep && strings.TrimSpace(*renew) == "" {
		flag.Usage()
		os.Exit(2)
	}

	ids, err := parseIDs(*renew)
	if err != nil {
		log.Fatalf("invalid -renew: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.App.LogLevel).With("app", cfg.App.AppName, "cmd", "sweep")
	defer func() {
		_ = logger.Sync()
	}()

	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Sweeper.Timeout)
	defer cancel()

	if err := app.Prepare(ctx, c); err != nil {
		logger.Error("prepare failed", "err", err)
		return
	}

	svcs := app.NewServices(c, nil)

	if len(ids) > 0 {
		n, err := svcs.Jobs.MarkJobsOK(ctx, 0, ids)
		if err != nil {
			logger.Error("renew failed", "ids", ids, "err", err)
			return
		}
		logger.Info("postings renewed", "requested", len(ids), "renewed", n)
	}

	if *sweep {
		if _, err := svcs.Sweeper.Sweep(ctx); err != nil {
			logger.Error("sweep failed", "err", err)
			return
		}
	}
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, strconv.ErrSyntax
		}
		out = append(out, id)
	}
	return out, nil
}
