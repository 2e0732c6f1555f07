package testutil

import (
	"context"
	"sync"

	"github.com/lipohub/tg-planner-bot/internal/llm"
)

// FakeLLM replays scripted replies in order, repeating the last one once
// the script runs out. It records every request it sees.
type FakeLLM struct {
	mu       sync.Mutex
	replies  []FakeReply
	requests []llm.GenerateRequest
}

type FakeReply struct {
	Text string
	Err  error
}

func NewFakeLLM(replies ...FakeReply) *FakeLLM {
	return &FakeLLM{replies: replies}
}

// Reply is shorthand for a FakeLLM that always answers text.
func Reply(text string) *FakeLLM {
	return NewFakeLLM(FakeReply{Text: text})
}

func (f *FakeLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		return nil, llm.ErrUnavailable
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &llm.GenerateResponse{Text: r.Text, Model: "fake", Attempts: 1}, nil
}

func (f *FakeLLM) Available(context.Context) bool { return true }

// Requests returns a copy of the requests seen so far.
func (f *FakeLLM) Requests() []llm.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.GenerateRequest(nil), f.requests...)
}

func (f *FakeLLM) LastUserMessage() string {
	reqs := f.Requests()
	if len(reqs) == 0 {
		return ""
	}
	msgs := reqs[len(reqs)-1].Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}
