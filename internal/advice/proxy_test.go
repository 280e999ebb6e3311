package advice

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/core"
)

func TestForward(t *testing.T) {
	var gotURL string
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer upstream.Close()

	p := NewProxy(Config{BaseURL: upstream.URL + "/", APIKey: "k&y"}, zap.NewNop())
	resp, err := p.Forward(context.Background(), "", "v1", strings.NewReader(`{"contents":[{"parts":[{"text":"hi"}]}]}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.Equal(t, `{"candidates":[]}`, string(resp.Body))
	assert.Equal(t, "/v1/models/"+DefaultModel+":generateContent?key=k%26y", gotURL)
	assert.Equal(t, `{"contents":[{"parts":[{"text":"hi"}]}]}`, string(gotBody))
}

func TestForward_Validation(t *testing.T) {
	p := NewProxy(Config{BaseURL: "http://127.0.0.1:0", APIKey: "k"}, zap.NewNop())

	for _, tc := range []struct{ model, version string }{
		{"gemini pro", ""},
		{"../secrets", ""},
		{"", "v1/../../"},
		{"gemini:stream", ""},
	} {
		_, err := p.Forward(context.Background(), tc.model, tc.version, strings.NewReader("{}"))
		assert.ErrorIs(t, err, core.ErrInvalidArgument, "%+v", tc)
	}

	_, err := p.Forward(context.Background(), "", "", strings.NewReader(strings.Repeat("x", maxBodyBytes+1)))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestForward_NotConfigured(t *testing.T) {
	p := NewProxy(Config{BaseURL: "http://127.0.0.1:0"}, zap.NewNop())
	_, err := p.Forward(context.Background(), "", "", strings.NewReader("{}"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestForward_Unreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	p := NewProxy(Config{BaseURL: url, APIKey: "secret-key"}, zap.NewNop())
	_, err := p.Forward(context.Background(), "", "", strings.NewReader("{}"))
	var up *core.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusBadGateway, up.Status)
	assert.NotContains(t, err.Error(), "secret-key")
}
