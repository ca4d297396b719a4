// Command terminal is a headless client for the 0xMeta news gateway: it
// connects a key-backed wallet, pays for a category through the x402
// unlock pipeline and prints the feed.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	terminal "github.com/0xmeta/terminal-go"
	"github.com/0xmeta/terminal-go/category"
	"github.com/0xmeta/terminal-go/eip3009"
	"github.com/0xmeta/terminal-go/gateway"
	"github.com/0xmeta/terminal-go/payment"
	"github.com/0xmeta/terminal-go/signers/local"
	"github.com/0xmeta/terminal-go/unlock"
	"github.com/0xmeta/terminal-go/wallet"
)

func main() {
	app := &cli.App{
		Name:  "terminal",
		Usage: "0xMeta Terminal headless client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "gateway", Aliases: []string{"g"}, Usage: "Gateway base URL", EnvVars: []string{"GATEWAY_URL"}, Value: "http://localhost:8080"},
			&cli.StringFlag{Name: "private-key", Aliases: []string{"k"}, Usage: "Hex-encoded wallet private key", EnvVars: []string{"PRIVATE_KEY"}},
			&cli.StringFlag{Name: "state-dir", Aliases: []string{"s"}, Usage: "Directory for session and cache state", EnvVars: []string{"STATE_DIR"}},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Fetch and print the gateway network configuration",
				Action: func(c *cli.Context) error {
					return runConfig(c)
				},
			},
			{
				Name:      "unlock",
				Usage:     "Pay for a category and print its feed",
				ArgsUsage: "<category>",
				Action: func(c *cli.Context) error {
					return runUnlock(c)
				},
			},
			{
				Name:      "feed",
				Usage:     "Print a category's cached or free feed",
				ArgsUsage: "<category>",
				Action: func(c *cli.Context) error {
					return runFeed(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if dev {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}

func stateDir(c *cli.Context) string {
	if dir := c.String("state-dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".terminal"
	}
	return filepath.Join(home, ".0xmeta-terminal")
}

func runConfig(c *cli.Context) error {
	_ = godotenv.Load()

	gw := gateway.NewClient(c.String("gateway"))
	cfg, err := gw.GetConfig(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("network:      %s (chain %s)\n", cfg.Network, cfg.ChainID)
	fmt.Printf("facilitator:  %s\n", cfg.FacilitatorBaseURL)
	fmt.Printf("treasury:     %s\n", cfg.TreasuryWallet)
	fmt.Printf("token:        %s\n", cfg.USDCAddress)
	fmt.Printf("price:        %g USDC (+%g fee = %s USDC, %s base units)\n",
		cfg.PriceUSDC, gateway.FeeUSDC, cfg.TotalPriceUSDC, cfg.TotalPriceUSDCWei)
	return nil
}

func runUnlock(c *cli.Context) error {
	_ = godotenv.Load()

	categoryID := c.Args().First()
	if categoryID == "" {
		return fmt.Errorf("usage: terminal unlock <category>")
	}

	logger, err := newLogger(c.Bool("development"))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	privateKey := c.String("private-key")
	if privateKey == "" {
		return fmt.Errorf("a private key is required to pay (set --private-key or PRIVATE_KEY)")
	}
	signer, err := local.NewSignerFromPrivateKey(privateKey)
	if err != nil {
		return err
	}

	dir := stateDir(c)
	sessions, err := wallet.NewFileSessionStore(filepath.Join(dir, "session.json"))
	if err != nil {
		return err
	}
	store, err := unlock.NewFileStore(filepath.Join(dir, "unlocks.json"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	gw := gateway.NewClient(c.String("gateway"), gateway.WithLogger(logger))

	cfg, err := gw.GetConfig(ctx)
	if err != nil {
		return err
	}

	tokens, err := eip3009.NewContractReader(cfg.RPCURL)
	if err != nil {
		return err
	}

	connector := wallet.NewConnector(signer,
		wallet.WithSessionStore(sessions),
		wallet.WithLogger(logger))
	if err := connector.RestoreSession(ctx); err != nil {
		return err
	}

	cache := unlock.NewCache(store)
	orchestrator := payment.NewOrchestrator(
		connector,
		eip3009.NewBuilder(signer, tokens),
		gw,
		cache,
		payment.WithNetworkConfig(cfg),
		payment.WithLogger(logger),
		payment.WithStatusFunc(func(u payment.StatusUpdate) {
			if u.Message != "" {
				fmt.Printf("[%s] %s\n", u.Status, u.Message)
			}
		}),
	)

	items, err := orchestrator.Unlock(ctx, categoryID)
	if err != nil {
		return err
	}

	printItems(categoryID, items)
	return nil
}

func runFeed(c *cli.Context) error {
	_ = godotenv.Load()

	categoryID := c.Args().First()
	if categoryID == "" {
		return fmt.Errorf("usage: terminal feed <category>")
	}

	logger, err := newLogger(c.Bool("development"))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	store, err := unlock.NewFileStore(filepath.Join(stateDir(c), "unlocks.json"))
	if err != nil {
		return err
	}
	cache := unlock.NewCache(store)

	ctx := context.Background()
	gw := gateway.NewClient(c.String("gateway"), gateway.WithLogger(logger))

	// Free categories are filled on demand; paid ones must be unlocked
	// first.
	prefetcher := unlock.NewPrefetcher(cache, gw, gateway.Normalize, category.FreeCategories, logger)
	prefetcher.Run(ctx)

	items, ok := cache.Get(categoryID)
	if !ok {
		if category.IsFree(categoryID) {
			return fmt.Errorf("free category %q could not be fetched", categoryID)
		}
		return fmt.Errorf("category %q is locked; run: terminal unlock %s", categoryID, categoryID)
	}

	printItems(categoryID, items)
	return nil
}

func printItems(categoryID string, items []terminal.NewsItem) {
	fmt.Printf("# %s (%d items)\n", category.Title(categoryID), len(items))
	for _, item := range items {
		marker := "·"
		switch item.Sentiment {
		case terminal.SentimentBullish:
			marker = "▲"
		case terminal.SentimentBearish:
			marker = "▼"
		}
		fmt.Printf("%s %-4s %-10s %s\n", marker, item.Time, item.Source, item.Title)
	}
}
