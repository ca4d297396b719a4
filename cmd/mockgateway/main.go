// Command mockgateway is a development stand-in for the news gateway. It
// serves a canned network configuration and category feeds, enforcing the
// X-Payment header on paid categories without touching a facilitator.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	terminal "github.com/0xmeta/terminal-go"
	"github.com/0xmeta/terminal-go/category"
)

var listenAddr = flag.String("listen", ":8080", "listen address")

func main() {
	flag.Parse()

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.GET("/api/config", handleConfig)
	router.GET("/news/:category", handleNews)

	log.Printf("mock gateway listening on %s", *listenAddr)
	if err := router.Run(*listenAddr); err != nil {
		log.Fatal(err)
	}
}

func handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"network":              "base-sepolia",
		"chain_id":             "0x14a34",
		"facilitator_base_url": "https://x402.org/facilitator",
		"treasury_wallet":      "0x209693Bc6afc0C5328bA36FaF03C514EF312287C",
		"usdc_address":         "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		"price_usdc":           0.01,
		"price_usdc_wei":       10000,
		"rpc_url":              "https://sepolia.base.org",
		"block_explorer":       "https://sepolia.basescan.org",
	})
}

func handleNews(c *gin.Context) {
	categoryID := c.Param("category")
	if _, ok := category.ByID(categoryID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("unknown category: %s", categoryID)})
		return
	}

	if !category.IsFree(categoryID) {
		header := c.GetHeader("X-Payment")
		if header == "" {
			c.JSON(http.StatusPaymentRequired, gin.H{"detail": "payment required: missing X-Payment header"})
			return
		}
		if _, err := terminal.DecodePaymentHeader(header); err != nil {
			c.JSON(http.StatusPaymentRequired, gin.H{"detail": fmt.Sprintf("payment rejected: %v", err)})
			return
		}
	}

	c.JSON(http.StatusOK, cannedFeed(categoryID))
}

// cannedFeed builds a small deterministic feed so client rendering and
// normalization can be exercised without live data.
func cannedFeed(categoryID string) terminal.NewsResponse {
	now := time.Now().Unix()
	title := category.Title(categoryID)
	return terminal.NewsResponse{
		CryptoNews: []terminal.ApiNewsItem{
			{
				Source:    "Blockworks",
				Title:     fmt.Sprintf("%s sector rallies as inflows surge to monthly high", title),
				Text:      fmt.Sprintf("Capital rotation into the %s sector accelerated this week, with funds recording their largest inflows of the month.", title),
				Timestamp: now - 540,
				Tokens:    []string{"ETH"},
				URL:       "https://example.com/articles/1",
			},
			{
				Source:       "The Block",
				Title:        fmt.Sprintf("Analysts warn of cooling momentum in %s", title),
				Text:         fmt.Sprintf("Several desks flagged weakening momentum across %s names after a sharp drop in volumes.", title),
				ShortContext: "Volumes down 18% week over week.",
				Timestamp:    now - 7200,
				URL:          "https://example.com/articles/2",
			},
		},
		Twitter: []terminal.ApiNewsItem{
			{
				Source:    "@cryptodesk",
				Text:      fmt.Sprintf("Huge surge in %s activity today. Bullish setup forming if this holds through the weekly close.", title),
				Timestamp: now - 120,
				Tokens:    []string{"BTC"},
				URL:       "https://example.com/posts/1",
			},
		},
	}
}
