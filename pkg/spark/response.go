package spark

import "github.com/liugddx/spark-go/pkg/api"

// toChatResponse lifts a wire completion into the provider-neutral
// shape. Both protocol dialects are handled: choice lists and the older
// top-level result field.
func toChatResponse(cc *ChatCompletion, model string) *api.ChatResponse {
	resp := &api.ChatResponse{
		ID:      cc.ID,
		Model:   model,
		Created: cc.Created,
		Usage:   toUsage(cc.Usage),
	}

	if len(cc.Choices) > 0 {
		resp.Generations = make([]api.Generation, 0, len(cc.Choices))
		for _, choice := range cc.Choices {
			role := choice.Role()
			if role == "" {
				role = string(api.RoleAssistant)
			}
			finish := choice.FinishReason
			if finish == "" {
				finish = cc.FinishReason
			}
			resp.Generations = append(resp.Generations, api.Generation{
				Index:        choice.Index,
				Message:      api.Message{Role: api.Role(role), Content: choice.Content()},
				FinishReason: finish,
			})
		}
		return resp
	}

	if cc.Result != "" {
		resp.Generations = []api.Generation{{
			Message:      api.AssistantMessage(cc.Result),
			FinishReason: cc.FinishReason,
		}}
	}
	return resp
}

// toUsage converts wire usage, filling in a missing total.
func toUsage(u *Usage) *api.Usage {
	if u == nil {
		return nil
	}
	return &api.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.Total(),
	}
}

// outcomeOf labels a call result for metrics.
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if t := api.TypeOf(err); t != "" {
		return string(t)
	}
	return "error"
}
