package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.perpnote.io/perpnote/api"
	"code.perpnote.io/perpnote/bond"
	"code.perpnote.io/perpnote/broker"
	"code.perpnote.io/perpnote/config"
	"code.perpnote.io/perpnote/fee"
	"code.perpnote.io/perpnote/logging"
	"code.perpnote.io/perpnote/metrics"
	"code.perpnote.io/perpnote/perp"
	"code.perpnote.io/perpnote/pricing"
	"code.perpnote.io/perpnote/types"
	"code.perpnote.io/perpnote/vault"

	"github.com/jessevdk/go-flags"
)

type options struct {
	RootPath    string `short:"c" long:"root-path" description:"Directory holding config.toml" default:"."`
	Environment string `long:"env" description:"Logging environment (dev or prod)" default:"dev"`
	Owner       string `long:"owner" description:"Governance account owning every engine" default:"governance"`
	Underlying  string `long:"underlying" description:"Underlying collateral symbol" default:"USDC"`
	Decimals    uint8  `long:"decimals" description:"Underlying and note token decimals" default:"6"`
}

// wallClock is the production time service, the engines only ever read now.
type wallClock struct{}

func (wallClock) GetTimeNow() time.Time { return time.Now() }

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		return err
	}

	log := logging.NewLoggerFromEnv(opts.Environment)
	defer log.AtExit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewDefaultConfig()
	watcher, err := config.NewFromFile(ctx, log, opts.RootPath)
	if err == nil {
		cfg = watcher.Get()
	} else {
		log.Warn("no config file found, running on defaults",
			logging.String("root-path", opts.RootPath),
			logging.Error(err),
		)
		watcher = nil
	}

	metrics.Start(cfg.Metrics)

	clock := wallClock{}
	evtBroker := broker.New(log, cfg.Broker)

	underlying := types.NewToken(opts.Underlying, opts.Underlying, opts.Decimals)
	issuer, err := bond.NewIssuer(underlying, []uint32{700, 300}, 14*24*time.Hour)
	if err != nil {
		return err
	}
	if _, err := issuer.Issue(clock.GetTimeNow()); err != nil {
		return err
	}

	strategy := pricing.CDRLowerBound{Bound: pricing.DefaultLowerBound}
	pricer := pricing.NewAdapter(strategy, pricing.NewYields(opts.Owner))

	feeEngine := fee.New(log, cfg.Fee, opts.Owner, evtBroker)
	noteEngine := perp.New(log, cfg.Perp, opts.Owner, opts.Decimals, issuer, pricer, feeEngine, clock, evtBroker)
	vaultEngine := vault.New(log, cfg.Vault, opts.Owner, underlying, noteEngine, issuer, feeEngine, strategy, clock, evtBroker)
	if err := feeEngine.SetProviders(noteEngine, vaultEngine, noteEngine); err != nil {
		return err
	}

	if watcher != nil {
		watcher.OnConfigUpdate(func(c config.Config) {
			feeEngine.ReloadConf(c.Fee)
			noteEngine.ReloadConf(c.Perp)
			vaultEngine.ReloadConf(c.Vault)
			evtBroker.ReloadConf(c.Broker)
		})
		go tick(ctx, watcher)
	}

	srv := api.NewServer(log, cfg.API, noteEngine, vaultEngine, feeEngine)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	return srv.Stop()
}

func tick(ctx context.Context, w *config.Watcher) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			w.OnTimeUpdate(ctx, now)
		case <-ctx.Done():
			return
		}
	}
}
