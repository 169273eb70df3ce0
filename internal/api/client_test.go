package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackwise/trackwise-go/internal/models"
)

func TestSubmitEntry(t *testing.T) {
	t.Parallel()

	t.Run("posts the normalized payload", func(t *testing.T) {
		t.Parallel()

		var received map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/manual-entry", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &received))
			_, _ = w.Write([]byte(`{"message":"Success"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		err := client.SubmitEntry(context.Background(), EntryPayload{
			Type:        "expense",
			Amount:      42.5,
			Date:        "2024-03-05",
			Category:    "Food",
			Description: "lunch",
			Vendor:      "",
		})
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"type":        "expense",
			"amount":      42.5,
			"date":        "2024-03-05",
			"category":    "Food",
			"description": "lunch",
			"vendor":      "",
		}, received)
	})

	t.Run("surfaces the server error message", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"amount too large"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		err := client.SubmitEntry(context.Background(), EntryPayload{})
		require.Error(t, err)
		require.True(t, IsServerRejected(err))
		require.Equal(t, "amount too large", ServerMessage(err, "fallback"))
	})

	t.Run("falls back when the error body is not JSON", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("gateway exploded"))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		err := client.SubmitEntry(context.Background(), EntryPayload{})
		require.Error(t, err)
		require.True(t, IsServerRejected(err))
		require.Equal(t, "fallback", ServerMessage(err, "fallback"))
	})

	t.Run("reports a transport failure when no response arrives", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(server.URL, time.Second)
		err := client.SubmitEntry(context.Background(), EntryPayload{})
		require.Error(t, err)
		require.True(t, IsTransport(err))
		require.False(t, IsServerRejected(err))
	})
}

func TestGetTransactions(t *testing.T) {
	t.Parallel()

	t.Run("fetches and decodes the collection", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/get-transactions", r.URL.Path)
			_, _ = w.Write([]byte(`[
				{"type":"income","amount":100,"date":"2024-01-01","description":"pay","source":"manual"},
				{"type":"expense","amount":30.5,"date":"2024-01-02","description":"groceries","vendor":"Store A","source":"textract"}
			]`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		txs, err := client.GetTransactions(context.Background())
		require.NoError(t, err)
		require.Len(t, txs, 2)
		require.Equal(t, models.TypeIncome, txs[0].Type)
		require.True(t, decimal.RequireFromString("30.5").Equal(txs[1].Amount))
		require.Equal(t, "textract", txs[1].Source)
	})

	t.Run("returns an empty collection for an empty array", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		txs, err := client.GetTransactions(context.Background())
		require.NoError(t, err)
		require.Empty(t, txs)
	})

	t.Run("rejects a non-2xx response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"scan failed"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.GetTransactions(context.Background())
		require.Error(t, err)
		require.True(t, IsServerRejected(err))
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"an array"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.GetTransactions(context.Background())
		require.Error(t, err)
		require.Contains(t, err.Error(), "decode transactions")
	})
}

func TestGetUploadTarget(t *testing.T) {
	t.Parallel()

	t.Run("requests a descriptor for the file name", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/get-presigned-url", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"filename":"bill.pdf"}`, string(body))
			_, _ = w.Write([]byte(`{
				"url": "https://bucket.example.com",
				"fields": {"acl": "private", "key": "uuid_bill.pdf", "policy": "abc"},
				"key": "uuid_bill.pdf"
			}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		target, err := client.GetUploadTarget(context.Background(), "bill.pdf")
		require.NoError(t, err)
		require.Equal(t, "https://bucket.example.com", target.URL)
		require.Equal(t, "uuid_bill.pdf", target.Key)
		require.Equal(t, map[string]string{"acl": "private", "key": "uuid_bill.pdf", "policy": "abc"}, target.Fields)
	})

	t.Run("rejects a descriptor without a destination", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"fields":{}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.GetUploadTarget(context.Background(), "bill.pdf")
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing the destination url")
	})

	t.Run("propagates a server rejection", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.GetUploadTarget(context.Background(), "bill.pdf")
		require.Error(t, err)
		require.True(t, IsServerRejected(err))
	})
}

func TestChatQuery(t *testing.T) {
	t.Parallel()

	t.Run("relays the question and returns the answer", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat-query", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"query":"how much did I spend on food?"}`, string(body))
			_, _ = w.Write([]byte(`{"response":"You spent 120.00 on food."}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		answer, err := client.ChatQuery(context.Background(), "how much did I spend on food?")
		require.NoError(t, err)
		require.Equal(t, "You spent 120.00 on food.", answer)
	})

	t.Run("returns an empty answer as-is", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		answer, err := client.ChatQuery(context.Background(), "anything")
		require.NoError(t, err)
		require.Empty(t, answer)
	})

	t.Run("propagates a server rejection with its message", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Missing 'query'"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.ChatQuery(context.Background(), "")
		require.Error(t, err)
		require.Equal(t, "Missing 'query'", ServerMessage(err, "fallback"))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(`{"response":"too late"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := client.ChatQuery(ctx, "question")
		require.Error(t, err)
		require.True(t, IsTransport(err))
	})
}
