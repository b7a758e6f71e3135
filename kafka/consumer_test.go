package kafka

import (
	"context"
	"errors"
	"testing"
)

type testPayload struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

func TestTypedMessageHandlerSuccess(t *testing.T) {
	var processed []testPayload
	handler := &TypedMessageHandler[testPayload]{
		Process: func(_ context.Context, msg *testPayload) error {
			processed = append(processed, *msg)
			return nil
		},
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{"id":"a","body":"hello"}`))
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !mark {
		t.Error("successful processing should mark the message")
	}
	if len(processed) != 1 || processed[0].ID != "a" {
		t.Errorf("processed = %+v", processed)
	}
}

func TestTypedMessageHandlerPoisonMessage(t *testing.T) {
	handler := &TypedMessageHandler[testPayload]{
		Process: func(_ context.Context, _ *testPayload) error {
			t.Fatal("Process called for malformed payload")
			return nil
		},
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{broken`))
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !mark {
		t.Error("malformed payload must be marked so it is not redelivered forever")
	}
}

func TestTypedMessageHandlerProcessErrorLeavesUnmarked(t *testing.T) {
	handler := &TypedMessageHandler[testPayload]{
		Process: func(_ context.Context, _ *testPayload) error {
			return errors.New("downstream unavailable")
		},
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{"id":"a"}`))
	if err == nil {
		t.Fatal("HandleMessage swallowed the processing error")
	}
	if mark {
		t.Error("failed processing must leave the message unmarked for redelivery")
	}
}

func TestTypedMessageHandlerValidation(t *testing.T) {
	calls := 0
	handler := &TypedMessageHandler[testPayload]{
		Validate: func(msg *testPayload) bool { return msg.ID != "" },
		Process: func(_ context.Context, _ *testPayload) error {
			calls++
			return nil
		},
	}

	mark, err := handler.HandleMessage(context.Background(), []byte(`{"body":"no id"}`))
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if mark {
		t.Error("invalid message should not be marked without AlwaysMark")
	}
	if calls != 0 {
		t.Error("Process called for invalid message")
	}

	handler.AlwaysMark = true
	mark, err = handler.HandleMessage(context.Background(), []byte(`{"body":"no id"}`))
	if err != nil {
		t.Fatalf("HandleMessage with AlwaysMark: %v", err)
	}
	if !mark {
		t.Error("AlwaysMark should mark invalid messages")
	}
}
