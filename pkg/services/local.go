package services

import (
	"context"
	"fmt"
	"strings"
)

// LocalGateway produces a canned structured answer without calling any
// provider. It keeps staging environments usable when IS_OPENAI_ENABLED=0;
// token usage is a rough length-based figure so metering still exercises
// the same path.
type LocalGateway struct{}

func NewLocalGateway() *LocalGateway {
	return &LocalGateway{}
}

func (g *LocalGateway) Complete(ctx context.Context, system string, history []ChatMessage, message string) (*ChatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topic := strings.TrimSpace(message)
	if topic == "" {
		topic = "your question"
	}
	b := &strings.Builder{}
	fmt.Fprintf(b, "Here is a short answer about: %s\n\n", truncate(topic, 60))
	fmt.Fprintln(b, "- This instance is running without a model provider.")
	fmt.Fprintln(b, "- Your message was saved and your balance was metered as usual.")
	if len(history) > 0 {
		fmt.Fprintf(b, "- This conversation has %d earlier turns.\n", len(history))
	}
	reply := b.String()

	used := int64(len(system)+len(message)+len(reply)) / 4
	for _, h := range history {
		used += int64(len(h.Text)) / 4
	}
	return &ChatResult{Reply: strings.TrimSpace(reply), TokensUsed: used}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
