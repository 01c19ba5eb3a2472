package chat

import (
	"context"
	"sync"
	"testing"
)

func TestConcurrentSendsAreSerializedPerUser(t *testing.T) {
	accounts := newFakeAccounts(newUser(1, 10000))
	convs := newFakeConvs()
	s := NewService(accounts, convs, &fakeGateway{reply: "r", tokens: 100}, testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.SendMessage(context.Background(), 1, "", "hello"); err != nil {
				t.Errorf("SendMessage failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// no lost updates: every debit must land
	if got := accounts.balance(t, 1); got != 10000-10*100 {
		t.Fatalf("expected balance 9000 after 10 serialized exchanges, got %d", got)
	}
	if len(convs.convs) != 10 {
		t.Fatalf("expected 10 conversations, got %d", len(convs.convs))
	}
}

func TestSendMessageBalanceEqualToEstimatePasses(t *testing.T) {
	accounts := newFakeAccounts(newUser(1, 200))
	convs := newFakeConvs()
	s := NewService(accounts, convs, &fakeGateway{reply: "r", tokens: 150}, testConfig())

	// the pre-flight check fails only on strictly-less
	res, err := s.SendMessage(context.Background(), 1, "", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if res.RemainingTokens != 50 {
		t.Fatalf("expected remaining 50, got %d", res.RemainingTokens)
	}
}
