package main

import (
	"os"

	"github.com/zombor/receipt-ocr/cmd/receiptctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
