// Command sparkchat sends one chat or embedding request to the Spark
// API and prints the result.
//
// Usage:
//
//	sparkchat [flags] <prompt>
//
// Flags:
//
//	-config  path to a YAML config file (default: discovered)
//	-model   chat model name, overrides the configured one
//	-system  system message placed before the prompt
//	-stream  stream the completion, printing fragments as they arrive
//	-embed   embed the prompt instead of chatting
//
// Credentials come from the config file or the SPARK_API_KEY and
// SPARK_API_SECRET environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/liugddx/spark-go/pkg/api"
	"github.com/liugddx/spark-go/pkg/config"
	"github.com/liugddx/spark-go/pkg/debug"
	"github.com/liugddx/spark-go/pkg/retry"
	"github.com/liugddx/spark-go/pkg/spark"
)

func main() {
	if err := run(); err != nil {
		slog.Error("sparkchat failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	model := flag.String("model", "", "chat model name, overrides the configured one")
	system := flag.String("system", "", "system message placed before the prompt")
	stream := flag.Bool("stream", false, "stream the completion")
	embed := flag.Bool("embed", false, "embed the prompt instead of chatting")
	flag.Parse()

	if flag.NArg() == 0 {
		return fmt.Errorf("usage: sparkchat [flags] <prompt>")
	}
	prompt := strings.Join(flag.Args(), " ")

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	debug.Init(cfg.Log.Debug, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := spark.NewClient(clientConfig(cfg))
	if err != nil {
		return err
	}
	defer client.Close()

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.Retry.MaxAttempts
	policy.InitialInterval = cfg.Retry.InitialInterval
	policy.MaxInterval = cfg.Retry.MaxInterval
	retrier := retry.New(policy, nil)

	if *embed {
		return runEmbed(ctx, client, cfg, retrier, prompt)
	}
	return runChat(ctx, client, cfg, retrier, *model, *system, *stream, prompt)
}

func runChat(ctx context.Context, client *spark.Client, cfg *config.Config, retrier *retry.Retrier, model, system string, stream bool, prompt string) error {
	cm, err := spark.NewChatModel(client, chatOptions(cfg, model), retrier)
	if err != nil {
		return err
	}

	var messages []api.Message
	if system != "" {
		messages = append(messages, api.SystemMessage(system))
	}
	messages = append(messages, api.UserMessage(prompt))
	p := api.NewPrompt(messages...)

	if !stream {
		resp, err := cm.Call(ctx, p)
		if err != nil {
			return err
		}
		fmt.Println(resp.Text())
		printUsage(resp.Usage)
		return nil
	}

	chunks, err := cm.Stream(ctx, p)
	if err != nil {
		return err
	}
	var usage *api.Usage
	for chunk := range chunks {
		if chunk.Err != nil {
			fmt.Println()
			return chunk.Err
		}
		fmt.Print(chunk.Response.Text())
		if chunk.Response.Usage != nil {
			usage = chunk.Response.Usage
		}
	}
	fmt.Println()
	printUsage(usage)
	return nil
}

func runEmbed(ctx context.Context, client *spark.Client, cfg *config.Config, retrier *retry.Retrier, prompt string) error {
	em, err := spark.NewEmbeddingModel(client, cfg.Embedding.Model, retrier)
	if err != nil {
		return err
	}

	resp, err := em.Embed(ctx, &api.EmbeddingRequest{Input: []string{prompt}, User: cfg.Chat.User})
	if err != nil {
		return err
	}
	if len(resp.Embeddings) == 0 {
		return fmt.Errorf("provider returned no embeddings")
	}

	vec := resp.Embeddings[0].Vector
	fmt.Printf("model:     %s\n", resp.Model)
	fmt.Printf("dimension: %d\n", len(vec))
	fmt.Printf("vector:    %v ...\n", vec[:min(len(vec), 8)])
	printUsage(resp.Usage)
	return nil
}

// clientConfig maps the file configuration onto the client Config.
func clientConfig(cfg *config.Config) spark.Config {
	termination := spark.TerminateOnUsage
	if cfg.Stream.Termination == "end_flag" {
		termination = spark.TerminateOnEndFlag
	}
	return spark.Config{
		Host:          cfg.Credential.Host,
		ChatPath:      cfg.Credential.ChatPath,
		EmbeddingPath: cfg.Credential.EmbeddingPath,
		APIKey:        cfg.Credential.APIKey,
		APISecret:     cfg.Credential.APISecret,
		Timeout:       cfg.Timeout,
		Termination:   termination,
	}
}

// chatOptions builds the client-level defaults from config. The -model
// flag takes precedence over the configured model.
func chatOptions(cfg *config.Config, model string) *api.ChatOptions {
	opts := &api.ChatOptions{
		Model:       cfg.Chat.Model,
		User:        cfg.Chat.User,
		Temperature: cfg.Chat.Temperature,
		TopP:        cfg.Chat.TopP,
		TopK:        cfg.Chat.TopK,
		MaxTokens:   cfg.Chat.MaxTokens,
	}
	if model != "" {
		opts.Model = model
	}
	return opts
}

// printUsage writes the token summary to stderr so piped stdout stays
// clean completion text.
func printUsage(u *api.Usage) {
	if u == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "tokens: %d prompt + %d completion = %d total\n",
		u.PromptTokens, u.CompletionTokens, u.TotalTokens)
}
