package assets

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aural-labs/denoise-go/internal/errors"
	"github.com/aural-labs/denoise-go/internal/httpclient"
)

func TestEffectiveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"empty uses default", "", DefaultBaseURL},
		{"override kept", "https://assets.example.com/denoise", "https://assets.example.com/denoise"},
		{"trailing slash trimmed", "https://assets.example.com/denoise/", "https://assets.example.com/denoise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveBaseURL(tt.override))
		})
	}
}

func TestResolveLocations(t *testing.T) {
	t.Run("default base", func(t *testing.T) {
		locs := ResolveLocations("")
		assert.Equal(t, DefaultBaseURL+"/"+executableFileName, locs.ExecutableURL)
		assert.Equal(t, DefaultBaseURL+"/"+modelFileName, locs.ModelURL)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := ResolveLocations("https://mirror.example.com/v2")
		b := ResolveLocations("https://mirror.example.com/v2/")
		assert.Equal(t, a, b, "equal effective bases must yield equal location sets")
	})
}

func newMockedSource(t *testing.T) *Source {
	t.Helper()
	client := httpclient.New(nil)
	transport := httpmock.NewMockTransport()
	client.SetTransport(transport)
	t.Cleanup(transport.Reset)
	return &Source{client: client}
}

func TestSource_FetchBytes(t *testing.T) {
	source := newMockedSource(t)
	transport := source.client.Transport().(*httpmock.MockTransport)

	const url = "https://cdn.example.com/denoiser_module.tflite"
	transport.RegisterResponder(http.MethodGet, url,
		httpmock.NewBytesResponder(http.StatusOK, []byte{0x01, 0x02, 0x03}))

	data, err := source.FetchBytes(t.Context(), url)
	require.NoError(t, err, "fetch failed")
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, data)
	assert.Equal(t, 1, transport.GetTotalCallCount(), "expected exactly one request")
}

func TestSource_FetchBytesNotFound(t *testing.T) {
	source := newMockedSource(t)
	transport := source.client.Transport().(*httpmock.MockTransport)

	const url = "https://cdn.example.com/missing.bin"
	transport.RegisterResponder(http.MethodGet, url,
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	_, err := source.FetchBytes(t.Context(), url)
	require.Error(t, err, "404 must surface as an error")

	var ee *errors.EnhancedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, string(errors.CategoryHTTP), ee.GetCategory())
	assert.Equal(t, 404, ee.GetContext()["status_code"])
}

func TestSource_FetchBytesTransportError(t *testing.T) {
	source := newMockedSource(t)

	// No responder registered: httpmock fails the round trip.
	_, err := source.FetchBytes(t.Context(), "https://cdn.example.com/unreachable.bin")
	require.Error(t, err, "transport failure must surface as an error")

	var ee *errors.EnhancedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, string(errors.CategoryNetwork), ee.GetCategory())
}
