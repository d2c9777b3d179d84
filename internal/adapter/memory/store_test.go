package memory_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"legal-llama/internal/adapter/memory"
	"legal-llama/internal/domain"
)

func TestStoreKeepsOrderPerSession(t *testing.T) {
	store := memory.NewStore()
	now := time.Now()

	require.False(t, store.Exists("a"))
	require.Nil(t, store.Messages("a"))

	store.Add("a", domain.Message{Role: domain.RoleAssistant, Content: "hi", Timestamp: now})
	store.Add("b", domain.Message{Role: domain.RoleUser, Content: "other", Timestamp: now})
	store.Add("a", domain.Message{Role: domain.RoleUser, Content: "topic", Timestamp: now})

	require.True(t, store.Exists("a"))
	msgs := store.Messages("a")
	require.Len(t, msgs, 2)
	require.Equal(t, "hi", msgs[0].Content)
	require.Equal(t, "topic", msgs[1].Content)
	require.Len(t, store.Messages("b"), 1)
}

func TestStoreMessagesReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	store.Add("a", domain.Message{Content: "original"})

	msgs := store.Messages("a")
	msgs[0].Content = "changed"

	require.Equal(t, "original", store.Messages("a")[0].Content)
}

func TestStoreConcurrentAdds(t *testing.T) {
	store := memory.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Add("shared", domain.Message{Role: domain.RoleUser, Content: "x"})
		}()
	}
	wg.Wait()

	require.Len(t, store.Messages("shared"), 50)
}
