// Package api defines the provider-agnostic types for the spark-go client.
//
// This package provides the conversation model shared by every adapter
// surface: messages and roles, prompts with per-call option overrides,
// chat responses and streaming chunks, embedding requests and results,
// and the error taxonomy that drives retry decisions.
//
// The package has zero external dependencies (Go standard library only)
// and performs no I/O. Provider wire formats live with the adapter that
// speaks them (see package spark); the types here are what callers hold.
//
// Core types:
//   - [Message]: one conversation turn with a [Role]
//   - [Prompt]: a conversation plus optional [ChatOptions] overrides
//   - [ChatResponse]: the logical result of a completion call
//   - [StreamChunk]: one event on a streaming channel
//   - [Error]: structured failure with a retryability contract
//
// Interfaces:
//
// [ChatModel], [StreamingChatModel] and [EmbeddingModel] are the entry
// points adapters implement. Streaming follows the channel convention:
// the producer closes the channel after the terminal chunk or error
// event, and the caller cancels by cancelling the context.
package api
