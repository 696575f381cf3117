package llm

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	m.SetTemperature(0.7)
	m.SetMaxOutputTokens(500)
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) StreamChat(ctx context.Context, system string, history []Turn) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		if len(history) == 0 {
			errs <- errors.New("llm: empty history")
			return
		}

		model := *v.model
		if system != "" {
			model.SystemInstruction = &vertexgenai.Content{
				Parts: []vertexgenai.Part{vertexgenai.Text(system)},
			}
		}

		cs := model.StartChat()
		for _, t := range history[:len(history)-1] {
			role := "model"
			if t.Role == RoleUser {
				role = "user"
			}
			cs.History = append(cs.History, &vertexgenai.Content{
				Role:  role,
				Parts: []vertexgenai.Part{vertexgenai.Text(t.Content)},
			})
		}

		it := cs.SendMessageStream(ctx, vertexgenai.Text(history[len(history)-1].Content))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
						out <- string(t)
					}
				}
			}
		}
	}()

	return out, errs
}
