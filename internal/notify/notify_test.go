package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlenaMolokova/escort/internal/notify"
	"github.com/stretchr/testify/assert"
)

func TestIntentConstructors(t *testing.T) {
	worker := notify.ToWorker(7, "hello")
	assert.Equal(t, int64(7), worker.WorkerID)
	assert.False(t, worker.Admins)

	squad := notify.ToSquad(3, "hello squad")
	assert.Equal(t, int64(3), squad.SquadID)

	admins := notify.ToAdmins("hello admins")
	assert.True(t, admins.Admins)
	assert.Equal(t, "hello admins", admins.Text)
}

func TestSend(t *testing.T) {
	t.Run("delivers_each_intent", func(t *testing.T) {
		var received []notify.Intent
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/notifications", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var intent notify.Intent
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&intent))
			received = append(received, intent)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := notify.NewClient(server.URL)
		client.Send(context.Background(), []notify.Intent{
			notify.ToWorker(7, "one"),
			notify.ToAdmins("two"),
		})

		assert.Len(t, received, 2)
		assert.Equal(t, int64(7), received[0].WorkerID)
		assert.True(t, received[1].Admins)
	})

	t.Run("failure_does_not_block_rest", func(t *testing.T) {
		var count int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count++
			if count == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := notify.NewClient(server.URL)
		client.Send(context.Background(), []notify.Intent{
			notify.ToAdmins("fails"),
			notify.ToAdmins("delivered"),
		})

		assert.Equal(t, 2, count)
	})

	t.Run("unreachable_server_does_not_panic", func(t *testing.T) {
		client := notify.NewClient("http://127.0.0.1:1")
		client.Send(context.Background(), []notify.Intent{notify.ToAdmins("lost")})
	})
}
