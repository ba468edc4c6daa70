package main

import (
	"context"
	"fmt"
	"os"

	"github.com/archerypulse/archery-vision/internal/llm"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY   - API key for the hosted Gemini backend\n")
		fmt.Fprintf(os.Stderr, "  LLAMA_SERVER_URL - use a local llama.cpp server instead\n")
		os.Exit(1)
	}

	godotenv.Load()

	cfg, err := llm.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	text, err := llm.Describe(context.Background(), cfg, os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing image: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(text)
}
