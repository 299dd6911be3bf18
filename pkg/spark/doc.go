// Package spark implements the adapter for the iFlytek Spark (XingHuo)
// conversational-AI HTTP API. It translates between the generic api types
// and the provider's wire protocol, handling signed-URL construction,
// request serialization, option-layer merging, SSE chunk streaming,
// stream aggregation, and error mapping.
//
// Two layers are exposed. [Client] is the low-level protocol client: it
// signs each request, POSTs it, and parses the reply; it never retries
// and records nothing but logs. [ChatModel] and [EmbeddingModel] wrap the
// Client with default-option merging, the retry collaborator, and
// Prometheus metrics, and implement the interfaces from package api.
package spark
