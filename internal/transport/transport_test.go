package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainResponseWriter does not implement http.Flusher
type plainResponseWriter struct {
	headers http.Header
}

func (p *plainResponseWriter) Header() http.Header { return p.headers }

func (p *plainResponseWriter) Write(b []byte) (int, error) { return len(b), nil }

func (p *plainResponseWriter) WriteHeader(int) {}

func TestNewSSEWriterRequiresFlusher(t *testing.T) {
	_, err := NewSSEWriter(&plainResponseWriter{headers: make(http.Header)})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestSSEWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewSSEWriter(rec)
	require.NoError(t, err)

	assert.Empty(t, rec.Header().Get("Content-Type"), "headers are written by Open only")

	require.NoError(t, w.Open(3000))
	require.NoError(t, w.Open(3000))
	require.NoError(t, w.WriteEvent([]byte(`{"status": "scheduled"}`)))
	require.NoError(t, w.WriteComment("heartbeat"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, rec.Flushed)

	assert.Equal(t, "retry: 3000\n\ndata: {\"status\": \"scheduled\"}\n\n: heartbeat\n\n", rec.Body.String())
}

func TestSSEWriterWithoutRetry(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewSSEWriter(rec)
	require.NoError(t, err)
	require.NoError(t, w.Open(0))
	assert.Empty(t, rec.Body.String())
}

func TestEncodeSnapshot(t *testing.T) {
	type seat struct {
		UserID string `json:"user_id"`
		Status string `json:"status"`
	}
	type snapshot struct {
		ID      string    `json:"id"`
		Note    *string   `json:"note"`
		Players []seat    `json:"players"`
		Pot     float64   `json:"pot"`
		Date    time.Time `json:"date"`
	}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{
			name:  "flat map",
			value: map[string]string{"status": "scheduled"},
			want:  `{"status": "scheduled"}`,
		},
		{
			name: "nested struct",
			value: snapshot{
				ID:      "t1",
				Players: []seat{{UserID: "u1", Status: "confirmed"}, {UserID: "u2", Status: "invited"}},
				Pot:     150.5,
				Date:    time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
			},
			want: `{"id": "t1", "note": null, "players": [{"user_id": "u1", "status": "confirmed"}, ` +
				`{"user_id": "u2", "status": "invited"}], "pot": 150.5, "date": "2024-03-01T20:00:00Z"}`,
		},
		{
			name:  "separators inside strings are kept",
			value: map[string]string{"venue": `Bob's, "back" room: 2`},
			want:  `{"venue": "Bob's, \"back\" room: 2"}`,
		},
		{
			name:  "escaped backslash before quote",
			value: map[string]string{"a": `x\`, "b": "y"},
			want:  `{"a": "x\\", "b": "y"}`,
		},
		{
			name:  "no html escaping",
			value: map[string]string{"name": "<A&B>"},
			want:  `{"name": "<A&B>"}`,
		},
		{
			name:  "non-ascii escaped",
			value: map[string]string{"venue": "Café ♠ 🂡"},
			want:  `{"venue": "Caf\u00e9 \u2660 \ud83c\udca1"}`,
		},
		{
			name:  "empty collections",
			value: map[string]any{"players": []string{}, "extra": map[string]int{}},
			want:  `{"extra": {}, "players": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeSnapshot(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeSnapshotDeterministic(t *testing.T) {
	v := map[string]any{"b": 1, "a": []int{1, 2}, "c": map[string]string{"z": "1", "y": "2"}}
	first, err := EncodeSnapshot(v)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := EncodeSnapshot(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeSnapshotFailure(t *testing.T) {
	_, err := EncodeSnapshot(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}
